package domain

import "errors"

var (
	ErrModNotFound        = errors.New("mod not found")
	ErrManifestNotFound   = errors.New("manifest not found in archive")
	ErrOwmlNotInstalled   = errors.New("OWML is not installed")
	ErrOwmlNotInCatalog   = errors.New("OWML not found in remote database")
	ErrNoPrerelease       = errors.New("mod has no prerelease")
	ErrDownloadFailed     = errors.New("download failed")
	ErrInvalidArchive     = errors.New("invalid archive")
	ErrPathTraversal      = errors.New("path traversal detected")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrRemoteDBUnreadable = errors.New("remote database unreadable")
)
