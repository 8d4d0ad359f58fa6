package ini_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/pelletier/go-ini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectItems(t *testing.T, doc string) ([]ini.Item, error) {
	t.Helper()

	p := ini.NewParser(strings.NewReader(doc))
	var items []ini.Item
	for {
		item, err := p.Next()
		if errors.Is(err, io.EOF) {
			return items, nil
		}
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
}

func TestParser_Items(t *testing.T) {
	t.Parallel()

	examples := []struct {
		desc     string
		input    string
		expected []ini.Item
	}{
		{
			desc:     "empty document",
			input:    "",
			expected: nil,
		},
		{
			desc:     "entry",
			input:    "key=value",
			expected: []ini.Item{ini.EntryItem("key", "value")},
		},
		{
			desc:     "entry with spaces around",
			input:    "  key  =  some value  \n",
			expected: []ini.Item{ini.EntryItem("key", "some value")},
		},
		{
			desc:     "entry splits on first equals",
			input:    "url=http://x?a=b",
			expected: []ini.Item{ini.EntryItem("url", "http://x?a=b")},
		},
		{
			desc:     "empty value",
			input:    "key=",
			expected: []ini.Item{ini.EntryItem("key", "")},
		},
		{
			desc:     "section",
			input:    "[section]",
			expected: []ini.Item{ini.SectionItem("section")},
		},
		{
			desc:     "section keeps inner spaces",
			input:    "[ my section ]",
			expected: []ini.Item{ini.SectionItem(" my section ")},
		},
		{
			desc:  "comments",
			input: "; semicolon\n# hash",
			expected: []ini.Item{
				ini.CommentItem(" semicolon"),
				ini.CommentItem(" hash"),
			},
		},
		{
			desc:  "blank lines",
			input: "\n   \n",
			expected: []ini.Item{
				ini.EmptyItem(),
				ini.EmptyItem(),
			},
		},
		{
			desc:  "crlf",
			input: "[a]\r\nb=c\r\n",
			expected: []ini.Item{
				ini.SectionItem("a"),
				ini.EntryItem("b", "c"),
			},
		},
		{
			desc:  "document",
			input: "top=1\n\n; comment\n[s]\nk = v\n",
			expected: []ini.Item{
				ini.EntryItem("top", "1"),
				ini.EmptyItem(),
				ini.CommentItem(" comment"),
				ini.SectionItem("s"),
				ini.EntryItem("k", "v"),
			},
		},
	}

	for _, e := range examples {
		e := e
		t.Run(e.desc, func(t *testing.T) {
			t.Parallel()

			items, err := collectItems(t, e.input)
			require.NoError(t, err)
			assert.Equal(t, e.expected, items)
		})
	}
}

func TestParser_Errors(t *testing.T) {
	t.Parallel()

	examples := []struct {
		desc  string
		input string
		err   error
		line  int
	}{
		{
			desc:  "section not closed",
			input: "a=b\n[section",
			err:   ini.ErrSectionNotClosed,
			line:  2,
		},
		{
			desc:  "section name with bracket",
			input: "[sec]tion]",
			err:   ini.ErrSectionName,
			line:  1,
		},
		{
			desc:  "missing equals",
			input: "\n\njust text",
			err:   ini.ErrMissingEquals,
			line:  3,
		},
	}

	for _, e := range examples {
		e := e
		t.Run(e.desc, func(t *testing.T) {
			t.Parallel()

			_, err := collectItems(t, e.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, e.err)

			var de *ini.DecodeError
			require.True(t, errors.As(err, &de))
			row, col := de.Position()
			assert.Equal(t, e.line, row)
			assert.Equal(t, 1, col)
		})
	}
}

func TestParser_ErrorIsSticky(t *testing.T) {
	t.Parallel()

	p := ini.NewParser(strings.NewReader("oops\nkey=value"))

	_, err := p.Next()
	require.ErrorIs(t, err, ini.ErrMissingEquals)

	_, again := p.Next()
	assert.Equal(t, err, again)
}

func TestParser_Line(t *testing.T) {
	t.Parallel()

	p := ini.NewParser(strings.NewReader("; c\n\n[s]\n"))
	for i := 1; i <= 3; i++ {
		_, err := p.Next()
		require.NoError(t, err)
		assert.Equal(t, i, p.Line())
	}
	_, err := p.Next()
	assert.ErrorIs(t, err, io.EOF)
}

type failingReader struct{}

var errRead = errors.New("read failure")

func (failingReader) Read([]byte) (int, error) {
	return 0, errRead
}

func TestParser_ReadError(t *testing.T) {
	t.Parallel()

	_, err := ini.NewParser(failingReader{}).Next()
	assert.ErrorIs(t, err, errRead)
}
