package ini

import "fmt"

// sectionRouter returns the key a decoder stores a section called name
// under.
type sectionRouter func(name string) (key string, ok bool)

type encoderCtx struct {
	// Key that should be used for an entry.
	key string
	// Extra flag to account for the empty string
	hasKey bool

	// Set to true when the encoder is writing the entries of a section.
	insideSection bool

	// Routing of the table being written, for sections whose name is not
	// the key.
	route sectionRouter
}

func (ctx *encoderCtx) setKey(k string) {
	ctx.key = k
	ctx.hasKey = true
}

func (ctx *encoderCtx) clearKey() {
	ctx.key = ""
	ctx.hasKey = false
}

// owns checks that a section called name is read back under the key of ctx.
func (ctx encoderCtx) owns(name string) error {
	if ctx.route == nil {
		return nil
	}
	key, ok := ctx.route(name)
	if !ok {
		return fmt.Errorf("%w: section [%s] of %q is not read back", ErrSectionConflict, name, ctx.key)
	}
	if key != ctx.key {
		return fmt.Errorf("%w: section [%s] of %q is read back into %q", ErrSectionConflict, name, ctx.key, key)
	}
	return nil
}

// emitter turns encoding events into items for a Writer, and rejects the
// sequences of events a decoder would read back differently.
type emitter struct {
	w *Writer

	// Set once the first section header has been written. From then on,
	// every entry belongs to a section.
	sectioned bool
}

func newEmitter(w *Writer) *emitter {
	return &emitter{w: w}
}

// entry writes value under the key of ctx.
func (e *emitter) entry(ctx encoderCtx, value string) error {
	if !ctx.hasKey {
		return ErrMapKeyMissing
	}
	if !ctx.insideSection && e.sectioned {
		return ErrOrphanValue
	}
	return e.w.Write(EntryItem(ctx.key, value))
}

// section writes a section header. The entries that follow belong to it.
func (e *emitter) section(name string) error {
	e.sectioned = true
	return e.w.Write(SectionItem(name))
}
