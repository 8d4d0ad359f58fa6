package ini

import (
	"bytes"
	"encoding"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"
)

// Marshal serializes a Go value as an INI document.
//
// It is a shortcut for Encoder.Encode() with the default options: lines are
// terminated with CRLF.
func Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	err := enc.Encode(v)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encoder writes an INI document to an output stream.
type Encoder struct {
	w io.Writer

	lineEnding LineEnding
}

// NewEncoder returns a new Encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		w: w,
	}
}

// SetLineEnding selects the terminator written after each line. The default
// is CRLF.
func (enc *Encoder) SetLineEnding(le LineEnding) *Encoder {
	enc.lineEnding = le
	return enc
}

// Encode writes an INI representation of v to the stream.
//
// If v cannot be represented in INI it returns an error, and nothing is
// written.
//
// Encoding rules:
//
// 1. v must be a struct or a map with string keys. Its scalar fields become
// top-level entries, its struct and map fields become sections.
//
// 2. Struct fields are written in declaration order, and a scalar field
// cannot follow a section. Map entries are sorted by key, scalars first.
//
// 3. A slice field of structs or maps is written as one section per
// element, all sharing the field's key.
//
// 4. A union (see Union) is written as the name of its variant when the
// variant is a unit, or as a section named after the variant when its
// payload is a struct or a map. Slices of such unions become repeated
// sections. A variant section must be read back into the field or map key
// it was written for, otherwise ErrSectionConflict is returned.
//
// 5. Booleans, byte slices, nil values, empty structs, and slices or maps
// inside a section cannot be represented and return an UnsupportedTypeError.
// Use the omitempty option to leave nil values out.
func (enc *Encoder) Encode(v interface{}) error {
	var buf bytes.Buffer
	e := newEmitter(NewWriter(&buf, enc.lineEnding))

	if err := e.document(reflect.ValueOf(v)); err != nil {
		return err
	}
	_, err := enc.w.Write(buf.Bytes())
	return err
}

func (e *emitter) document(v reflect.Value) error {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return &EncodeError{Err: ErrTopLevelMap}
		}
		v = v.Elem()
	}
	if !v.IsValid() || isTextMarshaler(v) || isUnion(v.Type()) {
		return &EncodeError{Err: ErrTopLevelMap}
	}

	var ctx encoderCtx
	switch v.Kind() {
	case reflect.Struct, reflect.Map:
		if err := e.table(ctx, v); err != nil {
			return wrapKey("", err)
		}
		return nil
	}
	return &EncodeError{Err: ErrTopLevelMap}
}

type entry struct {
	Key   string
	Value reflect.Value
}

// table writes the fields of a struct or the entries of a map.
func (e *emitter) table(ctx encoderCtx, v reflect.Value) error {
	entries, route, err := tableEntries(v)
	if err != nil {
		return err
	}

	ctx.route = route
	ctx.clearKey()
	for _, en := range entries {
		ctx.setKey(en.Key)
		if err := e.field(ctx, en.Value); err != nil {
			return wrapKey(en.Key, err)
		}
	}
	return nil
}

// tableEntries returns the entries of v in writing order, and how a decoder
// routes sections back into v.
func tableEntries(v reflect.Value) ([]entry, sectionRouter, error) {
	if v.Kind() == reflect.Map {
		entries, err := mapEntries(v)
		return entries, mapRoute, err
	}

	info, err := structInfoOf(v.Type())
	if err != nil {
		return nil, nil, err
	}
	route := func(name string) (string, bool) {
		fi, ok := info.sectionField(name)
		return fi.name, ok
	}

	entries := make([]entry, 0, len(info.fields))
	for _, fi := range info.fields {
		f := v.Field(fi.index)
		if fi.omitEmpty && isEmptyValue(f) {
			continue
		}
		entries = append(entries, entry{Key: fi.name, Value: f})
	}
	return entries, route, nil
}

// mapRoute routes sections to the map key of the same name.
func mapRoute(name string) (string, bool) {
	return name, true
}

func mapEntries(v reflect.Value) ([]entry, error) {
	var kvs, sections []entry

	iter := v.MapRange()
	for iter.Next() {
		k, err := mapKey(iter.Key())
		if err != nil {
			return nil, err
		}
		en := entry{Key: k, Value: iter.Value()}
		if willConvertToSection(en.Value) {
			sections = append(sections, en)
		} else {
			kvs = append(kvs, en)
		}
	}

	sortEntriesByKey(kvs)
	sortEntriesByKey(sections)

	return append(kvs, sections...), nil
}

func sortEntriesByKey(e []entry) {
	sort.Slice(e, func(i, j int) bool {
		return e[i].Key < e[j].Key
	})
}

func mapKey(k reflect.Value) (string, error) {
	if k.Kind() == reflect.String {
		return k.String(), nil
	}
	if m, ok := k.Interface().(encoding.TextMarshaler); ok {
		b, err := m.MarshalText()
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return "", fmt.Errorf("%w, not %s", ErrNonStringKey, k.Type())
}

// willConvertToSection reports whether v is written as one or more sections
// rather than as an entry.
func willConvertToSection(v reflect.Value) bool {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}
	if isTextMarshaler(v) {
		return false
	}
	if isUnion(v.Type()) {
		u, err := unionInfoOf(v.Type())
		if err != nil {
			return false
		}
		vi, payload, err := u.active(v)
		if err != nil || vi.shape == variantUnit {
			return false
		}
		return willConvertToSection(payload)
	}

	switch v.Kind() {
	case reflect.Map:
		return true
	case reflect.Struct:
		return v.NumField() > 0
	case reflect.Slice, reflect.Array:
		return !isBytes(v.Type())
	}
	return false
}

// field writes v under the key of ctx, either as an entry or, at the top
// level, as sections.
func (e *emitter) field(ctx encoderCtx, v reflect.Value) error {
	v, err := deref(v)
	if err != nil {
		return err
	}

	if isTextMarshaler(v) {
		s, err := marshalText(v)
		if err != nil {
			return err
		}
		return e.entry(ctx, s)
	}
	if isUnion(v.Type()) {
		return e.union(ctx, v)
	}

	switch v.Kind() {
	case reflect.Bool:
		return unsupported(UnsupportedBool, v.Type())
	case reflect.Struct:
		if v.NumField() == 0 {
			return unsupported(UnsupportedUnit, v.Type())
		}
		fallthrough
	case reflect.Map:
		if ctx.insideSection {
			return unsupported(UnsupportedMap, v.Type())
		}
		if err := e.section(ctx.key); err != nil {
			return err
		}
		return e.body(v)
	case reflect.Slice, reflect.Array:
		if isBytes(v.Type()) {
			return unsupported(UnsupportedBytes, v.Type())
		}
		if ctx.insideSection {
			return unsupported(UnsupportedSeq, v.Type())
		}
		return e.sections(ctx, v)
	}

	s, err := formatScalar(v)
	if err != nil {
		return err
	}
	return e.entry(ctx, s)
}

// body writes the entries of the section that was just opened.
func (e *emitter) body(v reflect.Value) error {
	return e.table(encoderCtx{insideSection: true}, v)
}

// sections writes one section per element of the slice v. Struct and map
// elements reuse the key of ctx as section name, unions use the name of
// their variant.
func (e *emitter) sections(ctx encoderCtx, v reflect.Value) error {
	for i := 0; i < v.Len(); i++ {
		elem, err := deref(v.Index(i))
		if err != nil {
			return err
		}

		if isUnion(elem.Type()) {
			if err := e.unionSection(ctx, elem); err != nil {
				return err
			}
			continue
		}

		if isTextMarshaler(elem) || !willConvertToSection(elem) || elem.Kind() == reflect.Slice || elem.Kind() == reflect.Array {
			return unsupported(UnsupportedSeq, v.Type())
		}
		if err := e.section(ctx.key); err != nil {
			return err
		}
		if err := e.body(elem); err != nil {
			return err
		}
	}
	return nil
}

// union writes the active variant of v. A unit variant is the value of an
// entry. At the top level, a variant with a struct or map payload is a
// section named after the variant.
func (e *emitter) union(ctx encoderCtx, v reflect.Value) error {
	u, err := unionInfoOf(v.Type())
	if err != nil {
		return err
	}
	vi, _, err := u.active(v)
	if err != nil {
		return err
	}

	if vi.shape == variantUnit {
		return e.entry(ctx, vi.name)
	}
	if ctx.insideSection {
		return fmt.Errorf("%s variant %q of %s cannot be encoded inside a section", vi.shape, vi.name, u.typ)
	}
	return e.unionSection(ctx, v)
}

// unionSection writes the active variant of v as a section named after the
// variant. The section must decode back under the key of ctx.
func (e *emitter) unionSection(ctx encoderCtx, v reflect.Value) error {
	u, err := unionInfoOf(v.Type())
	if err != nil {
		return err
	}
	vi, payload, err := u.active(v)
	if err != nil {
		return err
	}

	payload, err = deref(payload)
	if err != nil {
		return err
	}

	switch {
	case vi.shape == variantTuple:
		return unsupported(UnsupportedSeq, payload.Type())
	case isTextMarshaler(payload), !willConvertToSection(payload), payload.Kind() == reflect.Slice, payload.Kind() == reflect.Array:
		return fmt.Errorf("%s variant %q of %s cannot be encoded as a section", vi.shape, vi.name, u.typ)
	}
	if err := ctx.owns(vi.name); err != nil {
		return err
	}

	if err := e.section(vi.name); err != nil {
		return err
	}
	return e.body(payload)
}

// deref follows pointers and interfaces. nil values have no INI
// representation.
func deref(v reflect.Value) (reflect.Value, error) {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return v, unsupported(UnsupportedNone, v.Type())
		}
		v = v.Elem()
	}
	return v, nil
}

func isTextMarshaler(v reflect.Value) bool {
	return v.Type().Implements(textMarshalerType) ||
		(v.CanAddr() && reflect.PtrTo(v.Type()).Implements(textMarshalerType))
}

func marshalText(v reflect.Value) (string, error) {
	if !v.Type().Implements(textMarshalerType) {
		v = v.Addr()
	}
	b, err := v.Interface().(encoding.TextMarshaler).MarshalText()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func formatScalar(v reflect.Value) (string, error) {
	switch v.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64), nil
	case reflect.Uint64, reflect.Uint32, reflect.Uint16, reflect.Uint8, reflect.Uint, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Int64, reflect.Int32, reflect.Int16, reflect.Int8, reflect.Int:
		return strconv.FormatInt(v.Int(), 10), nil
	}
	return "", fmt.Errorf("unsupported encode value kind: %s", v.Kind())
}

// wrapKey attaches key to err, unless a more specific key is already
// attached.
func wrapKey(key string, err error) error {
	var ee *EncodeError
	if errors.As(err, &ee) {
		return err
	}
	return &EncodeError{Key: key, Err: err}
}
