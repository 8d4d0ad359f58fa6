package ini

import "strings"

type strict struct {
	Enabled bool

	missing []DecodeError
}

func (s *strict) MissingSection(pos span) {
	if !s.Enabled {
		return
	}
	s.missing = append(s.missing, *newDecodeError(pos, errMissingSection))
}

func (s *strict) MissingField(pos span) {
	if !s.Enabled {
		return
	}
	s.missing = append(s.missing, *newDecodeError(pos, errMissingField))
}

func (s *strict) Error() error {
	if !s.Enabled || len(s.missing) == 0 {
		return nil
	}
	return &StrictMissingError{Errors: s.missing}
}

type strictMessage string

func (m strictMessage) Error() string { return string(m) }

const (
	errMissingSection = strictMessage("missing section")
	errMissingField   = strictMessage("missing field")
)

// StrictMissingError occurs in an INI document that does not have a
// corresponding field in the target value. It contains all the missing
// fields. Use Decoder.SetStrict to enable this check.
type StrictMissingError struct {
	// One error per field that could not be found.
	Errors []DecodeError
}

// Error returns the canonical string for this error.
func (s *StrictMissingError) Error() string {
	return "strict mode: fields in the document are missing in the target struct"
}

// String returns a human readable description of all errors.
func (s *StrictMissingError) String() string {
	var buf strings.Builder

	for i, e := range s.Errors {
		if i > 0 {
			buf.WriteString("\n---\n")
		}

		buf.WriteString(e.String())
	}

	return buf.String()
}
