package ini

import (
	"encoding"
	"fmt"
	"reflect"
	"sync"
)

// Union marks a struct as a tagged union when embedded in it.
//
// Every other exported field of the struct is a variant. Variant fields must
// be pointers; a nil pointer is an inactive variant, and exactly one variant
// is set in a valid value. The variant name is the field name, or the name
// given by an `ini:"name"` tag.
//
//	type Shape struct {
//		ini.Union
//		Circle *Circle
//		Square *Square `ini:"square"`
//		None   *struct{}
//	}
//
// The shape of a variant's payload decides where the union can appear in a
// document:
//
//   - a pointer to struct{} is a unit variant. Its name is written as the
//     value of an entry: "shape=None".
//   - a pointer to a struct or a map is a map variant. It is written as a
//     section named after the variant, followed by the payload's entries.
//   - a pointer to a scalar is a newtype variant. It can only appear as an
//     element of a top-level sequence, where it is written as an entry
//     keyed by the variant name: "Name=value".
//   - a pointer to a slice or an array is a tuple variant. INI has no
//     representation for those.
type Union struct{}

var unionType = reflect.TypeOf(Union{})

type variantShape int

const (
	variantUnit variantShape = iota
	variantTable
	variantScalar
	variantTuple
	// interface payload, resolved against the document or the value.
	variantDynamic
)

func (s variantShape) String() string {
	switch s {
	case variantUnit:
		return "unit"
	case variantTable:
		return "map"
	case variantScalar:
		return "newtype"
	case variantTuple:
		return "tuple"
	default:
		return "dynamic"
	}
}

type variantInfo struct {
	name  string
	index int
	shape variantShape
	// pointer type of the field.
	typ reflect.Type
}

type unionInfo struct {
	typ      reflect.Type
	variants []variantInfo
	byName   map[string]int
}

type unionEntry struct {
	info *unionInfo
	err  error
}

var unionCache sync.Map // map[reflect.Type]unionEntry

func isUnion(t reflect.Type) bool {
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type == unionType {
			return true
		}
	}
	return false
}

func unionInfoOf(t reflect.Type) (*unionInfo, error) {
	if e, ok := unionCache.Load(t); ok {
		entry := e.(unionEntry)
		return entry.info, entry.err
	}

	info, err := buildUnionInfo(t)
	unionCache.Store(t, unionEntry{info: info, err: err})
	return info, err
}

func buildUnionInfo(t reflect.Type) (*unionInfo, error) {
	info := &unionInfo{
		typ:    t,
		byName: map[string]int{},
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type == unionType {
			continue
		}
		// only consider exported fields
		if f.PkgPath != "" {
			continue
		}
		name, _ := parseTag(f)
		if name == "-" {
			continue
		}
		if f.Type.Kind() != reflect.Ptr {
			return nil, fmt.Errorf("union %s: variant %s must be a pointer, not %s", t, f.Name, f.Type)
		}
		if _, dup := info.byName[name]; dup {
			return nil, fmt.Errorf("union %s: duplicate variant name %q", t, name)
		}
		info.byName[name] = len(info.variants)
		info.variants = append(info.variants, variantInfo{
			name:  name,
			index: i,
			shape: shapeOf(f.Type.Elem()),
			typ:   f.Type,
		})
	}
	if len(info.variants) == 0 {
		return nil, fmt.Errorf("union %s has no variants", t)
	}
	return info, nil
}

func shapeOf(t reflect.Type) variantShape {
	if implementsText(t) {
		return variantScalar
	}
	switch t.Kind() {
	case reflect.Struct:
		if t.NumField() == 0 {
			return variantUnit
		}
		return variantTable
	case reflect.Map:
		return variantTable
	case reflect.Slice, reflect.Array:
		return variantTuple
	case reflect.Interface:
		return variantDynamic
	case reflect.Ptr:
		return shapeOf(t.Elem())
	default:
		return variantScalar
	}
}

func implementsText(t reflect.Type) bool {
	return t.Implements(textMarshalerType) || reflect.PtrTo(t).Implements(textUnmarshalerType)
}

var (
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

func (u *unionInfo) variant(name string) (variantInfo, bool) {
	i, ok := u.byName[name]
	if !ok {
		return variantInfo{}, false
	}
	return u.variants[i], true
}

// active returns the only set variant of v and its payload.
func (u *unionInfo) active(v reflect.Value) (variantInfo, reflect.Value, error) {
	var found *variantInfo
	for i := range u.variants {
		vi := &u.variants[i]
		if v.Field(vi.index).IsNil() {
			continue
		}
		if found != nil {
			return variantInfo{}, reflect.Value{}, fmt.Errorf("union %s has more than one variant set (%s, %s)", u.typ, found.name, vi.name)
		}
		found = vi
	}
	if found == nil {
		return variantInfo{}, reflect.Value{}, fmt.Errorf("union %s has no variant set", u.typ)
	}
	return *found, v.Field(found.index).Elem(), nil
}

// choose sets the variant called vi on v, clearing the others, and returns
// the newly allocated payload.
func (u *unionInfo) choose(v reflect.Value, vi variantInfo) reflect.Value {
	for _, other := range u.variants {
		if other.index != vi.index {
			f := v.Field(other.index)
			f.Set(reflect.Zero(f.Type()))
		}
	}
	p := reflect.New(vi.typ.Elem())
	v.Field(vi.index).Set(p)
	return p.Elem()
}

func (u *unionInfo) names() []string {
	names := make([]string, len(u.variants))
	for i, vi := range u.variants {
		names[i] = vi.name
	}
	return names
}
