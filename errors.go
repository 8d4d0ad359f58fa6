package ini

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Syntax errors reported by the Parser.
var (
	ErrSectionNotClosed = errors.New("section missing ']'")
	ErrSectionName      = errors.New("section name contains ']'")
	ErrMissingEquals    = errors.New("variable assignment missing '='")
)

// Shape errors reported while decoding, when the next item of the document
// does not fit the type being decoded.
var (
	ErrInvalidState  = errors.New("document does not match the target type")
	ErrUnexpectedEOF = errors.New("unexpected end of document")
)

// Errors reported while encoding.
var (
	ErrNonStringKey  = errors.New("map keys must be a string type")
	ErrTopLevelMap   = errors.New("only a map or struct can be encoded as a document")
	ErrOrphanValue   = errors.New("top-level values must be encoded before any section")
	ErrMapKeyMissing = errors.New("encoder consistency error: attempted to encode a value without key")
	// A union section would be decoded into another field or key than the
	// one it was written for.
	ErrSectionConflict = errors.New("section name is claimed by another key")
)

// UnsupportedType enumerates the kinds of Go values that have no INI
// representation.
type UnsupportedType int

const (
	UnsupportedBool UnsupportedType = iota
	UnsupportedBytes
	UnsupportedNone
	UnsupportedUnit
	UnsupportedSeq
	UnsupportedMap
)

func (t UnsupportedType) String() string {
	switch t {
	case UnsupportedBool:
		return "bool"
	case UnsupportedBytes:
		return "bytes"
	case UnsupportedNone:
		return "nil"
	case UnsupportedUnit:
		return "unit"
	case UnsupportedSeq:
		return "sequence"
	case UnsupportedMap:
		return "nested map"
	}
	return "unsupported type " + strconv.Itoa(int(t))
}

// UnsupportedTypeError is returned when a value cannot be represented in
// INI at the position it appears.
type UnsupportedTypeError struct {
	Type UnsupportedType
	// Go type of the offending value, when known.
	GoType reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	if e.GoType == nil {
		return fmt.Sprintf("%s cannot be represented in INI", e.Type)
	}
	return fmt.Sprintf("%s (%s) cannot be represented in INI", e.Type, e.GoType)
}

func unsupported(t UnsupportedType, typ reflect.Type) error {
	return &UnsupportedTypeError{Type: t, GoType: typ}
}

// EncodeError is returned by the encoder. It carries the key of the entry or
// section that could not be encoded, if any.
type EncodeError struct {
	Key string
	Err error
}

func (e *EncodeError) Error() string {
	if e.Key == "" {
		return "ini: " + e.Err.Error()
	}
	return fmt.Sprintf("ini: key %q: %s", e.Key, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// DecodeError represents an error encountered during the parsing or decoding
// of an INI document.
//
// In addition to the error message, it contains the position in the document
// where it happened, as well as a human-readable representation that shows
// where the error occurred in the document.
type DecodeError struct {
	message string
	pos     Position

	human string
	err   error
}

// span highlights a range of bytes of one line of the document.
type span struct {
	line   int // 1-indexed, 0 when unknown
	text   string
	offset int
	length int
}

func newDecodeError(s span, err error) *DecodeError {
	de := &DecodeError{
		message: err.Error(),
		err:     err,
	}
	de.pos = s.start()
	if de.pos.Invalid() {
		de.human = de.message
		return de
	}
	de.human = highlight(s, de.message)
	return de
}

// Error returns the error message contained in the DecodeError.
func (e *DecodeError) Error() string {
	return "ini: " + e.message
}

// String returns the human-readable contextualized error. This string is multi-line.
func (e *DecodeError) String() string {
	return e.human
}

// Position returns the (line, column) pair indicating where the error
// occurred in the document. Positions are 1-indexed. Both are 0 when the
// error is not tied to a line, such as an unexpected end of document.
func (e *DecodeError) Position() (row int, column int) {
	return e.pos.Line, e.pos.Col
}

// Unwrap returns the cause of the error, for use with errors.Is and
// errors.As.
func (e *DecodeError) Unwrap() error {
	return e.err
}

func highlight(s span, message string) string {
	var buf strings.Builder

	num := strconv.Itoa(s.line)
	buf.WriteString(num)
	buf.WriteString("| ")
	buf.WriteString(s.text)
	buf.WriteRune('\n')
	buf.WriteString(strings.Repeat(" ", len(num)))
	buf.WriteString("| ")
	buf.WriteString(strings.Repeat(" ", s.offset))
	length := s.length
	if length < 1 {
		length = 1
	}
	buf.WriteString(strings.Repeat("~", length))
	buf.WriteString(" ")
	buf.WriteString(message)

	return buf.String()
}

func lineSpan(line int, text string) span {
	return span{line: line, text: text, length: len(text)}
}

func keySpan(line int, text string, key string) span {
	s := lineSpan(line, text)
	if i := strings.Index(text, key); i >= 0 && key != "" {
		s.offset = i
		s.length = len(key)
	}
	return s
}

func valueSpan(line int, text string, value string) span {
	s := lineSpan(line, text)
	eq := strings.IndexByte(text, '=')
	if eq < 0 {
		return s
	}
	s.offset = eq + 1
	s.length = len(text) - s.offset
	if i := strings.Index(text[eq+1:], value); i >= 0 && value != "" {
		s.offset += i
		s.length = len(value)
	}
	return s
}

func sectionSpan(line int, text string, name string) span {
	s := lineSpan(line, text)
	if i := strings.IndexByte(text, '['); i >= 0 {
		s.offset = i + 1
		s.length = len(name)
	}
	return s
}
