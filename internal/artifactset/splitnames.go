package artifactset

import (
	"regexp"
	"strings"
)

// splitDelimiter is fixed by the metadata store schema: split names are
// persisted on the artifact as a single delimited string, not a list field.
const splitDelimiter = ","

var splitNameRE = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// EncodeSplitNames joins split names into the delimited form stored on an
// artifact. Every name must be alphanumeric, optionally continuing with
// dashes and underscores. The first invalid name fails the whole call; no
// partial output is produced. An empty slice encodes to "".
func EncodeSplitNames(splits []string) (string, error) {
	for _, split := range splits {
		if !splitNameRE.MatchString(split) {
			return "", &ValidationError{Name: split}
		}
	}
	return strings.Join(splits, splitDelimiter), nil
}

// DecodeSplitNames parses the delimited form back into an ordered list.
// Decode performs no validation: records written before the naming rule
// tightened (or by other producers) must stay readable.
func DecodeSplitNames(encoded string) []string {
	if encoded == "" {
		return []string{}
	}
	return strings.Split(encoded, splitDelimiter)
}
