package ini

import (
	"bufio"
	"io"
	"strings"
)

// Parser splits an INI document into Items, one line at a time.
//
// It does not interpret the items: sections, entries, comments and blank
// lines are returned in document order.
type Parser struct {
	r *bufio.Reader

	line int
	text string
	err  error
}

// NewParser returns a Parser reading from r.
func NewParser(r io.Reader) *Parser {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Parser{r: br}
}

// Next returns the next item of the document. It returns io.EOF once the
// input is exhausted.
//
// Syntax errors are returned as *DecodeError. Once an error has been
// returned, Next keeps returning it.
func (p *Parser) Next() (Item, error) {
	if p.err != nil {
		return Item{}, p.err
	}

	text, err := p.readLine()
	if err != nil {
		p.err = err
		return Item{}, err
	}
	p.line++
	p.text = text

	item, err := parseLine(text)
	if err != nil {
		p.err = newDecodeError(lineSpan(p.line, text), err)
		return Item{}, p.err
	}
	return item, nil
}

// Line returns the 1-indexed line number of the last item returned by Next.
func (p *Parser) Line() int {
	return p.line
}

func (p *Parser) rawLine() (int, string) {
	return p.line, p.text
}

func (p *Parser) readLine() (string, error) {
	line, err := p.r.ReadString('\n')
	if err == io.EOF {
		if line == "" {
			return "", io.EOF
		}
	} else if err != nil {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}

func parseLine(line string) (Item, error) {
	if strings.HasPrefix(line, "[") {
		if !strings.HasSuffix(line, "]") {
			return Item{}, ErrSectionNotClosed
		}
		name := line[1 : len(line)-1]
		if strings.Contains(name, "]") {
			return Item{}, ErrSectionName
		}
		return SectionItem(name), nil
	}

	if strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
		return CommentItem(line[1:]), nil
	}

	key, value, found := strings.Cut(line, "=")
	if found {
		return EntryItem(strings.TrimSpace(key), strings.TrimSpace(value)), nil
	}
	if strings.TrimSpace(key) == "" {
		return EmptyItem(), nil
	}
	return Item{}, ErrMissingEquals
}
