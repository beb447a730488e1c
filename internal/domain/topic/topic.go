// Package topic derives stable topic identifiers from uploaded filenames.
package topic

import (
	"strings"
	"unicode"
)

// Derive maps a filename to its topic identifier: the part before the first
// dot, lowercased, with every run of non-alphanumeric characters collapsed to
// a single underscore. Pure function of the filename, so re-uploading a file
// with the same name lands in the same topic and its chunks accumulate there.
// Two different filenames may derive the same identifier and share a topic;
// that is accepted behavior, not a defect.
func Derive(filename string) string {
	base := filename
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	base = strings.ToLower(base)

	var b strings.Builder
	b.Grow(len(base))
	pendingSep := false
	for _, r := range base {
		if isAlphanumeric(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

func isAlphanumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
