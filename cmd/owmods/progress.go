package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/ow-mods/ow-mod-man-sub000/internal/core"
)

// progressStep is the percentage between two progress lines of one download
const progressStep = 25

// newProgressPrinter reports each download once per progress step. Downloads without a
// known length get a single line.
func newProgressPrinter(w io.Writer) core.ProgressFunc {
	var mu sync.Mutex
	reported := make(map[string]int)

	return func(p core.DownloadProgress) {
		step := p.Percent()
		if step > 0 {
			step = step / progressStep * progressStep
		}

		mu.Lock()
		defer mu.Unlock()
		if last, ok := reported[p.Name]; ok && step <= last {
			return
		}
		reported[p.Name] = step

		if step < 0 {
			fmt.Fprintf(w, "Downloading %s\n", p.Name)
			return
		}
		fmt.Fprintf(w, "Downloading %s %3d%% (%s of %s)\n", p.Name, step, formatBytes(p.Written), formatBytes(p.Total))
	}
}
