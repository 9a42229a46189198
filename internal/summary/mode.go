package summary

import "strconv"

// Mode selects a matching strategy. The set is closed: only the four
// documented strategies exist and no open-ended extension is designed for.
//
// The numeric codes are part of the external contract (URLs and cached
// results key on them) and must not be renumbered.
type Mode int

const (
	// ModeTree emits the exact per-activation call tree with no merging.
	ModeTree Mode = 0

	// ModeNoMatch gives every activation its own node and assigns reprs.
	ModeNoMatch Mode = 1

	// ModeExactMatch merges nodes whose entire subtree shape is identical.
	ModeExactMatch Mode = 2

	// ModeNamespaceMatch merges activations sharing (line, name).
	// This is the default mode.
	ModeNamespaceMatch Mode = 3
)

var modeNames = map[Mode]string{
	ModeTree:           "tree",
	ModeNoMatch:        "no_match",
	ModeExactMatch:     "exact_match",
	ModeNamespaceMatch: "namespace_match",
}

// String returns the mode's wire name, or "unknown" for invalid values.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether m is one of the four defined modes.
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// ParseMode resolves a mode from its wire name or numeric code.
// Unknown values produce an UnknownModeError.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if s == name {
			return m, nil
		}
	}
	if code, err := strconv.Atoi(s); err == nil {
		if m := Mode(code); m.Valid() {
			return m, nil
		}
	}
	return 0, &UnknownModeError{Mode: s}
}
