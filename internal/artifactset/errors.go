package artifactset

import "fmt"

// ValidationError reports a split name that failed the naming rule at
// encode time.
type ValidationError struct {
	Name string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("split names are expected to be alphanumeric (allowing dashes and underscores, provided they are not the first character); got %q instead", e.Name)
}

// FormatError reports serialized collection text that could not be parsed.
// Channel and Index locate the offending entry when a single artifact
// record is at fault; Index is -1 when the failure is structural.
type FormatError struct {
	Channel string
	Index   int
	Err     error
}

func (e *FormatError) Error() string {
	if e.Channel == "" {
		return fmt.Sprintf("artifact set is not a JSON object: %v", e.Err)
	}
	if e.Index < 0 {
		return fmt.Sprintf("channel %q is not a JSON array of artifacts: %v", e.Channel, e.Err)
	}
	return fmt.Sprintf("channel %q artifact at index %d: %v", e.Channel, e.Index, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// CardinalityError reports a resolution that expected exactly one
// qualifying artifact and found zero or several.
type CardinalityError struct {
	Count   int
	Message string
}

func (e *CardinalityError) Error() string {
	return e.Message
}
