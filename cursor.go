package ini

import (
	"errors"
	"io"
)

// itemSource yields the items of a document, returning io.EOF at the end.
// *Parser is the usual implementation.
type itemSource interface {
	Next() (Item, error)
}

// lineSource is implemented by sources that know the raw text of the last
// item they returned. It is used to position errors.
type lineSource interface {
	rawLine() (int, string)
}

type cursorState int

const (
	cursorInit cursorState = iota
	cursorEOF
	cursorBuffered
)

// peek is the kind of the next meaningful item.
type peek int

const (
	peekNone peek = iota
	peekValue
	peekSection
)

// cursor holds exactly one item (or one fault) ahead of consumption.
//
// Comments and blank lines are dropped while the buffer is filled. A fault
// from the source is surfaced exactly once; after that the cursor behaves as
// exhausted.
type cursor struct {
	src   itemSource
	state cursorState

	item Item
	err  error

	// raw text of the buffered item.
	line int
	text string
}

func newCursor(src itemSource) *cursor {
	return &cursor{src: src}
}

func (c *cursor) populate() {
	for c.state == cursorInit {
		item, err := c.src.Next()
		if errors.Is(err, io.EOF) {
			c.state = cursorEOF
			return
		}
		if err == nil && (item.Kind == Comment || item.Kind == Empty) {
			continue
		}
		c.state = cursorBuffered
		c.item = item
		c.err = err
		if ls, ok := c.src.(lineSource); ok {
			c.line, c.text = ls.rawLine()
		}
	}
}

// peekItem returns the buffered item, or nil at the end of the stream.
func (c *cursor) peekItem() (*Item, error) {
	c.populate()
	if c.state == cursorEOF {
		return nil, nil
	}
	if c.err != nil {
		err := c.err
		c.err = nil
		c.state = cursorEOF
		return nil, err
	}
	return &c.item, nil
}

// advance drops the buffered item. The next one is read lazily.
func (c *cursor) advance() {
	c.state = cursorInit
	c.item = Item{}
}

func (c *cursor) peekKind() (peek, error) {
	item, err := c.peekItem()
	if err != nil {
		return peekNone, err
	}
	if item == nil {
		return peekNone, nil
	}
	if item.Kind == Entry {
		return peekValue, nil
	}
	// populate drops comments and blank lines.
	return peekSection, nil
}

// peekKey returns the key of the buffered entry without consuming it.
func (c *cursor) peekKey() (string, span, error) {
	item, err := c.expect(Entry)
	if err != nil {
		return "", span{}, err
	}
	return item.Key, keySpan(c.line, c.text, item.Key), nil
}

// peekSectionName returns the name of the buffered section header without
// consuming it.
func (c *cursor) peekSectionName() (string, span, error) {
	item, err := c.expect(Section)
	if err != nil {
		return "", span{}, err
	}
	return item.Name, sectionSpan(c.line, c.text, item.Name), nil
}

// takeValue consumes the buffered entry and returns its value.
func (c *cursor) takeValue() (string, span, error) {
	item, err := c.expect(Entry)
	if err != nil {
		return "", span{}, err
	}
	value := item.Value
	s := valueSpan(c.line, c.text, value)
	c.advance()
	return value, s, nil
}

// takeSectionName consumes the buffered section header. The entries that
// follow it stay in the stream.
func (c *cursor) takeSectionName() (string, span, error) {
	item, err := c.expect(Section)
	if err != nil {
		return "", span{}, err
	}
	name := item.Name
	s := sectionSpan(c.line, c.text, name)
	c.advance()
	return name, s, nil
}

// assertEOF fails if any item is left in the stream.
func (c *cursor) assertEOF() error {
	item, err := c.peekItem()
	if err != nil {
		return err
	}
	if item != nil {
		return c.fault(c.itemSpan(), ErrInvalidState)
	}
	return nil
}

func (c *cursor) expect(kind Kind) (*Item, error) {
	item, err := c.peekItem()
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, c.fault(span{}, ErrUnexpectedEOF)
	}
	if item.Kind != kind {
		return nil, c.fault(c.itemSpan(), ErrInvalidState)
	}
	return item, nil
}

func (c *cursor) itemSpan() span {
	return lineSpan(c.line, c.text)
}

func (c *cursor) fault(s span, err error) error {
	return newDecodeError(s, err)
}
