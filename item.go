package ini

import "fmt"

// Kind is the kind of an INI Item.
type Kind int

const (
	// Empty is a blank line.
	Empty Kind = iota
	// Comment is a line starting with ';' or '#'.
	Comment
	// Section is a "[name]" header. It scopes the entries that follow it,
	// until the next Section or the end of the document.
	Section
	// Entry is a "key=value" assignment.
	Entry
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "Empty"
	case Comment:
		return "Comment"
	case Section:
		return "Section"
	case Entry:
		return "Entry"
	}
	panic(fmt.Errorf("unknown item kind: %d", int(k)))
}

// Item is one line of an INI document.
//
// Only the fields relevant to Kind are set: Name for a Section, Key and
// Value for an Entry, Text for a Comment.
type Item struct {
	Kind  Kind
	Name  string
	Key   string
	Value string
	Text  string
}

// EmptyItem returns a blank line item.
func EmptyItem() Item {
	return Item{Kind: Empty}
}

// CommentItem returns a comment item. text does not include the comment
// marker.
func CommentItem(text string) Item {
	return Item{Kind: Comment, Text: text}
}

// SectionItem returns a section header item.
func SectionItem(name string) Item {
	return Item{Kind: Section, Name: name}
}

// EntryItem returns a key/value item.
func EntryItem(key, value string) Item {
	return Item{Kind: Entry, Key: key, Value: value}
}

func (i Item) String() string {
	switch i.Kind {
	case Section:
		return "[" + i.Name + "]"
	case Entry:
		return i.Key + "=" + i.Value
	case Comment:
		return ";" + i.Text
	default:
		return ""
	}
}
