package ini

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
)

// Unmarshal deserializes an INI document into a Go value.
//
// It is a shortcut for Decoder.Decode() with the default options.
func Unmarshal(data []byte, v interface{}) error {
	return NewDecoder(bytes.NewReader(data)).Decode(v)
}

// Decoder reads and decodes an INI document from an input stream.
type Decoder struct {
	r io.Reader

	strict bool
}

// NewDecoder creates a new Decoder that will read from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// SetStrict toggles decoding in strict mode.
//
// When the decoder is in strict mode, it will record keys and sections from
// the document that could not be set on the target value. In that case the
// decoder returns a StrictMissingError that can be used to retrieve the
// individual errors as well as generate a human readable description of the
// missing fields.
func (d *Decoder) SetStrict(strict bool) *Decoder {
	d.strict = strict
	return d
}

// Decode the whole content of r into v.
//
// v must be a non-nil pointer. The shape of the value it points to drives
// how the document is read:
//
// 1. A struct or a map receives the top-level entries under their key, and
// each section under its name. A section's entries populate the nested
// struct or map of the field.
//
// 2. A slice field of structs or maps receives one element per section
// carrying its name, so a repeated section becomes a list.
//
// 3. A slice of unions (see Union) receives one element per top-level entry
// or section, the entry key or section name selecting the variant.
//
// 4. An interface{} receives a map[string]interface{} of strings and nested
// map[string]interface{}.
//
// Scalars are strings, integers and floats parsed with strconv, or types
// implementing encoding.TextUnmarshaler. Booleans and byte slices are not
// supported. Pointers are always allocated: a key missing from the document
// leaves the pointer nil, but an empty value cannot be told apart from an
// empty string.
//
// The whole document must be consumed: leftover items are an error.
func (d *Decoder) Decode(v interface{}) error {
	r := reflect.ValueOf(v)
	if r.Kind() != reflect.Ptr {
		return fmt.Errorf("ini: need to target a pointer, not %s", r.Kind())
	}
	if r.IsNil() {
		return fmt.Errorf("ini: target pointer must be non-nil")
	}

	dec := decoder{
		c:      newCursor(NewParser(d.r)),
		strict: strict{Enabled: d.strict},
	}
	if err := dec.fromDocument(r.Elem()); err != nil {
		return err
	}
	if err := dec.c.assertEOF(); err != nil {
		return err
	}
	return dec.strict.Error()
}

type decoder struct {
	c      *cursor
	strict strict
}

func (d *decoder) fromDocument(v reflect.Value) error {
	v = indirect(v)

	if isUnion(v.Type()) {
		return d.element(v)
	}
	if _, ok := textUnmarshaler(v); ok {
		return documentShapeError(v.Type())
	}

	switch v.Kind() {
	case reflect.Struct:
		t, err := newStructTable(v)
		if err != nil {
			return fmt.Errorf("ini: %w", err)
		}
		return d.topLevel(t)
	case reflect.Map:
		t, err := newMapTable(v)
		if err != nil {
			return err
		}
		return d.topLevel(t)
	case reflect.Interface:
		if !isEmptyInterface(v.Type()) {
			return documentShapeError(v.Type())
		}
		m := reflect.ValueOf(map[string]interface{}{})
		t, _ := newMapTable(m)
		if err := d.topLevel(t); err != nil {
			return err
		}
		v.Set(m)
		return nil
	case reflect.Slice:
		if isBytes(v.Type()) {
			return documentShapeError(v.Type())
		}
		return d.sequence(v)
	}
	return documentShapeError(v.Type())
}

func documentShapeError(t reflect.Type) error {
	return fmt.Errorf("ini: cannot decode a document into %s: %w", t, ErrInvalidState)
}

// topLevel reads top-level entries and sections into t until the end of the
// document.
func (d *decoder) topLevel(t table) error {
	for {
		kind, err := d.c.peekKind()
		if err != nil {
			return err
		}

		switch kind {
		case peekNone:
			return nil
		case peekValue:
			err = d.entry(t)
		case peekSection:
			err = d.section(t)
		}
		if err != nil {
			return err
		}
	}
}

// entry decodes the buffered entry into the matching slot of t.
func (d *decoder) entry(t table) error {
	key, pos, err := d.c.peekKey()
	if err != nil {
		return err
	}

	slot, ok, err := t.slot(key, false)
	if err != nil {
		return newDecodeError(pos, err)
	}
	if !ok {
		d.strict.MissingField(pos)
		_, _, err := d.c.takeValue()
		return err
	}

	if err := d.value(slot, pos); err != nil {
		return err
	}
	return t.commit(key, slot)
}

// section decodes the buffered section header and its entries into the
// matching slot of t.
func (d *decoder) section(t table) error {
	name, pos, err := d.c.peekSectionName()
	if err != nil {
		return err
	}

	slot, ok, err := t.slot(name, true)
	if err != nil {
		return newDecodeError(pos, err)
	}
	if !ok {
		d.strict.MissingSection(pos)
		return d.skipSection()
	}

	if _, _, err := d.c.takeSectionName(); err != nil {
		return err
	}
	if err := d.sectionValue(slot, name, pos); err != nil {
		return err
	}
	return t.commit(name, slot)
}

func (d *decoder) skipSection() error {
	if _, _, err := d.c.takeSectionName(); err != nil {
		return err
	}
	for {
		kind, err := d.c.peekKind()
		if err != nil {
			return err
		}
		if kind != peekValue {
			return nil
		}
		if _, _, err := d.c.takeValue(); err != nil {
			return err
		}
	}
}

// value decodes the buffered entry's value into v. keyPos locates the key of
// the entry, for errors that are about the target rather than the value.
func (d *decoder) value(v reflect.Value, keyPos span) error {
	kind, err := d.c.peekKind()
	if err != nil {
		return err
	}
	switch kind {
	case peekNone:
		return d.c.fault(span{}, ErrUnexpectedEOF)
	case peekSection:
		return d.c.fault(d.c.itemSpan(), ErrInvalidState)
	}

	v = indirect(v)

	if u, ok := textUnmarshaler(v); ok {
		s, pos, err := d.c.takeValue()
		if err != nil {
			return err
		}
		if err := u.UnmarshalText([]byte(s)); err != nil {
			return newDecodeError(pos, err)
		}
		return nil
	}

	if isUnion(v.Type()) {
		return d.unitVariant(v)
	}

	switch {
	case isScalarKind(v.Kind()):
		s, pos, err := d.c.takeValue()
		if err != nil {
			return err
		}
		if err := setScalar(v, s); err != nil {
			return newDecodeError(pos, err)
		}
		return nil
	case isEmptyInterface(v.Type()):
		s, _, err := d.c.takeValue()
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(s))
		return nil
	case v.Kind() == reflect.Bool:
		return newDecodeError(keyPos, unsupported(UnsupportedBool, v.Type()))
	case isBytes(v.Type()):
		return newDecodeError(keyPos, unsupported(UnsupportedBytes, v.Type()))
	}

	return newDecodeError(keyPos, fmt.Errorf("cannot decode a value into %s: %w", v.Type(), ErrInvalidState))
}

// sectionValue decodes the entries following a section header into v. The
// header has already been consumed.
func (d *decoder) sectionValue(v reflect.Value, name string, pos span) error {
	v = indirect(v)

	if v.Kind() == reflect.Slice && !isBytes(v.Type()) {
		elem := reflect.New(v.Type().Elem()).Elem()
		if err := d.sectionBody(indirect(elem), name, pos); err != nil {
			return err
		}
		v.Set(reflect.Append(v, elem))
		return nil
	}

	return d.sectionBody(v, name, pos)
}

func (d *decoder) sectionBody(v reflect.Value, name string, pos span) error {
	if isUnion(v.Type()) {
		return d.sectionVariant(v, name, pos)
	}
	if _, ok := textUnmarshaler(v); !ok {
		switch v.Kind() {
		case reflect.Struct:
			t, err := newStructTable(v)
			if err != nil {
				return newDecodeError(pos, err)
			}
			return d.entries(t)
		case reflect.Map:
			t, err := newMapTable(v)
			if err != nil {
				return newDecodeError(pos, err)
			}
			return d.entries(t)
		case reflect.Interface:
			if isEmptyInterface(v.Type()) {
				existing, ok := v.Interface().(map[string]interface{})
				if !ok || existing == nil {
					existing = map[string]interface{}{}
				}
				m := reflect.ValueOf(existing)
				t, _ := newMapTable(m)
				if err := d.entries(t); err != nil {
					return err
				}
				v.Set(m)
				return nil
			}
		}
	}
	return newDecodeError(pos, fmt.Errorf("cannot decode section [%s] into %s: %w", name, v.Type(), ErrInvalidState))
}

// entries reads the entries of a section into t. It stops at the next
// section header, which is left in the stream, or at the end of the
// document.
func (d *decoder) entries(t table) error {
	for {
		kind, err := d.c.peekKind()
		if err != nil {
			return err
		}
		if kind != peekValue {
			return nil
		}
		if err := d.entry(t); err != nil {
			return err
		}
	}
}

// sequence reads every top-level element of the document, appending them to
// v.
func (d *decoder) sequence(v reflect.Value) error {
	et := v.Type().Elem()
	base := et
	for base.Kind() == reflect.Ptr {
		base = base.Elem()
	}
	if !isUnion(base) {
		return fmt.Errorf("ini: cannot decode a document into %s: sequence elements must be unions: %w", v.Type(), ErrInvalidState)
	}

	for {
		kind, err := d.c.peekKind()
		if err != nil {
			return err
		}
		if kind == peekNone {
			return nil
		}
		elem := reflect.New(et).Elem()
		if err := d.element(indirect(elem)); err != nil {
			return err
		}
		v.Set(reflect.Append(v, elem))
	}
}

// element decodes one logical element into the union v: either an entry,
// whose key selects the variant and whose value is the payload, or a section
// and its entries, whose name selects the variant.
func (d *decoder) element(v reflect.Value) error {
	u, err := unionInfoOf(v.Type())
	if err != nil {
		return fmt.Errorf("ini: %w", err)
	}

	kind, err := d.c.peekKind()
	if err != nil {
		return err
	}

	switch kind {
	case peekValue:
		key, pos, err := d.c.peekKey()
		if err != nil {
			return err
		}
		vi, ok := u.variant(key)
		if !ok {
			return newDecodeError(pos, unknownVariant(u, key))
		}
		if vi.shape == variantUnit || vi.shape == variantTuple {
			return newDecodeError(pos, fmt.Errorf("%s variant %q of %s cannot be decoded from an entry", vi.shape, key, u.typ))
		}
		return d.value(u.choose(v, vi), pos)
	case peekSection:
		name, pos, err := d.c.takeSectionName()
		if err != nil {
			return err
		}
		return d.sectionVariant(v, name, pos)
	}
	return d.c.fault(span{}, ErrUnexpectedEOF)
}

// sectionVariant selects the variant of v named after a section and decodes
// the section's entries as its payload.
func (d *decoder) sectionVariant(v reflect.Value, name string, pos span) error {
	u, err := unionInfoOf(v.Type())
	if err != nil {
		return fmt.Errorf("ini: %w", err)
	}

	vi, ok := u.variant(name)
	if !ok {
		return newDecodeError(pos, unknownVariant(u, name))
	}
	switch vi.shape {
	case variantTable, variantDynamic:
	default:
		return newDecodeError(pos, fmt.Errorf("%s variant %q of %s cannot be decoded from a section", vi.shape, name, u.typ))
	}

	payload := indirect(u.choose(v, vi))
	return d.sectionBody(payload, name, pos)
}

// unitVariant decodes a union from the buffered entry's value, which names a
// unit variant.
func (d *decoder) unitVariant(v reflect.Value) error {
	u, err := unionInfoOf(v.Type())
	if err != nil {
		return fmt.Errorf("ini: %w", err)
	}

	s, pos, err := d.c.takeValue()
	if err != nil {
		return err
	}
	vi, ok := u.variant(s)
	if !ok {
		return newDecodeError(pos, unknownVariant(u, s))
	}
	if vi.shape != variantUnit {
		return newDecodeError(pos, fmt.Errorf("%s variant %q of %s cannot be decoded from a value", vi.shape, s, u.typ))
	}
	u.choose(v, vi)
	return nil
}

func unknownVariant(u *unionInfo, name string) error {
	return fmt.Errorf("unknown variant %q of %s, expected one of %q", name, u.typ, u.names())
}
