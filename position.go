package ini

import "strconv"

// Position locates a byte in an INI document. Lines and columns are
// 1-indexed; the zero Position means "no position", such as the end of the
// document.
type Position struct {
	Line int
	Col  int
}

func (p Position) String() string {
	if p.Invalid() {
		return "end of document"
	}
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Col)
}

// Invalid reports whether p points nowhere in the document.
func (p Position) Invalid() bool {
	return p.Line <= 0 || p.Col <= 0
}

// start is the position of the first highlighted byte of s.
func (s span) start() Position {
	if s.line <= 0 {
		return Position{}
	}
	return Position{Line: s.line, Col: s.offset + 1}
}
