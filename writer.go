package ini

import (
	"fmt"
	"io"
)

// LineEnding is the line terminator written after each item.
type LineEnding int

const (
	// CRLF terminates lines with "\r\n". It is the default.
	CRLF LineEnding = iota
	// LF terminates lines with "\n".
	LF
)

func (l LineEnding) String() string {
	if l == LF {
		return "\n"
	}
	return "\r\n"
}

// Writer formats Items as lines of text.
type Writer struct {
	w          io.Writer
	lineEnding LineEnding
}

// NewWriter returns a Writer that writes to w, terminating each line with le.
func NewWriter(w io.Writer, le LineEnding) *Writer {
	return &Writer{w: w, lineEnding: le}
}

// Write writes one item followed by the line terminator.
func (w *Writer) Write(item Item) error {
	var err error
	switch item.Kind {
	case Section:
		_, err = fmt.Fprintf(w.w, "[%s]%s", item.Name, w.lineEnding)
	case Entry:
		_, err = fmt.Fprintf(w.w, "%s=%s%s", item.Key, item.Value, w.lineEnding)
	case Comment:
		_, err = fmt.Fprintf(w.w, ";%s%s", item.Text, w.lineEnding)
	case Empty:
		_, err = io.WriteString(w.w, w.lineEnding.String())
	default:
		err = fmt.Errorf("ini: cannot write item of kind %d", int(item.Kind))
	}
	return err
}
