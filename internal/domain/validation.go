package domain

import "fmt"

// ValidationErrorKind tags a ValidationError variant
type ValidationErrorKind int

const (
	MissingDLL ValidationErrorKind = iota
	MissingDep
	DisabledDep
	ConflictingMod
	DuplicateMod
	InvalidManifest
	Outdated
)

func (k ValidationErrorKind) String() string {
	switch k {
	case MissingDLL:
		return "missing-dll"
	case MissingDep:
		return "missing-dep"
	case DisabledDep:
		return "disabled-dep"
	case ConflictingMod:
		return "conflicting-mod"
	case DuplicateMod:
		return "duplicate-mod"
	case InvalidManifest:
		return "invalid-manifest"
	case Outdated:
		return "outdated"
	default:
		return "unknown"
	}
}

// ValidationError is a problem attached to a mod. It is data, recomputed on every scan,
// and never returned as a Go error from a scan.
//
// Detail holds the variant payload: the DLL path for MissingDLL (may be empty), the other
// mod's unique name for MissingDep/DisabledDep/ConflictingMod, the first folder for
// DuplicateMod, the parse message for InvalidManifest and the remote version for Outdated.
type ValidationError struct {
	Kind   ValidationErrorKind
	Detail string
}

func NewMissingDLL(path string) ValidationError     { return ValidationError{MissingDLL, path} }
func NewMissingDep(name string) ValidationError     { return ValidationError{MissingDep, name} }
func NewDisabledDep(name string) ValidationError    { return ValidationError{DisabledDep, name} }
func NewConflictingMod(name string) ValidationError { return ValidationError{ConflictingMod, name} }
func NewDuplicateMod(path string) ValidationError   { return ValidationError{DuplicateMod, path} }
func NewInvalidManifest(msg string) ValidationError { return ValidationError{InvalidManifest, msg} }
func NewOutdated(version string) ValidationError    { return ValidationError{Outdated, version} }

func (e ValidationError) String() string {
	switch e.Kind {
	case MissingDLL:
		if e.Detail == "" {
			return "missing DLL"
		}
		return fmt.Sprintf("missing DLL %s", e.Detail)
	case MissingDep:
		return fmt.Sprintf("missing dependency %s", e.Detail)
	case DisabledDep:
		return fmt.Sprintf("dependency %s is disabled", e.Detail)
	case ConflictingMod:
		return fmt.Sprintf("conflicts with %s", e.Detail)
	case DuplicateMod:
		return fmt.Sprintf("duplicate of mod at %s", e.Detail)
	case InvalidManifest:
		return fmt.Sprintf("invalid manifest: %s", e.Detail)
	case Outdated:
		return fmt.Sprintf("outdated, %s is available", e.Detail)
	default:
		return "unknown error"
	}
}
