package trace

import "golang.org/x/text/unicode/norm"

// CanonicalName returns the NFC-normalized form of an activation name.
//
// Match keys and structural reprs compare names byte-for-byte, so two
// activations whose names differ only in Unicode normalization form must
// normalize to the same key. Tracers that emit NFD (common on macOS file
// paths embedded in names) would otherwise never merge with NFC traces.
func CanonicalName(name string) string {
	if norm.NFC.IsNormalString(name) {
		return name
	}
	return norm.NFC.String(name)
}
