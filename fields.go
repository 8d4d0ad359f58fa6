package ini

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

type fieldInfo struct {
	name      string
	index     int
	omitEmpty bool
}

// structInfo describes how the fields of a struct type map to INI keys.
type structInfo struct {
	fields []fieldInfo
	byName map[string]int

	// variant name -> field, for union fields and slice fields whose
	// elements are unions. A section named after one of the variants is
	// decoded into that field.
	byVariant map[string]int
}

type structEntry struct {
	info *structInfo
	err  error
}

var structCache sync.Map // map[reflect.Type]structEntry

func structInfoOf(t reflect.Type) (*structInfo, error) {
	if e, ok := structCache.Load(t); ok {
		entry := e.(structEntry)
		return entry.info, entry.err
	}
	info, err := buildStructInfo(t)
	e, _ := structCache.LoadOrStore(t, structEntry{info: info, err: err})
	entry := e.(structEntry)
	return entry.info, entry.err
}

func buildStructInfo(t reflect.Type) (*structInfo, error) {
	info := &structInfo{
		byName:    map[string]int{},
		byVariant: map[string]int{},
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)

		// only consider exported fields
		if f.PkgPath != "" {
			continue
		}

		name, omitEmpty := parseTag(f)
		// special field name to skip field
		if name == "-" {
			continue
		}

		info.byName[name] = len(info.fields)
		info.fields = append(info.fields, fieldInfo{
			name:      name,
			index:     i,
			omitEmpty: omitEmpty,
		})
	}

	// Slice fields claim variant names before single union fields.
	for _, collect := range []bool{true, false} {
		for i, fi := range info.fields {
			et := t.Field(fi.index).Type
			if (et.Kind() == reflect.Slice) != collect {
				continue
			}
			if collect {
				et = et.Elem()
			}
			for et.Kind() == reflect.Ptr {
				et = et.Elem()
			}
			if !isUnion(et) {
				continue
			}
			u, err := unionInfoOf(et)
			if err != nil {
				return nil, fmt.Errorf("%w (field %s of %s)", err, t.Field(fi.index).Name, t)
			}
			for _, vi := range u.variants {
				if _, taken := info.byName[vi.name]; taken {
					continue
				}
				if _, taken := info.byVariant[vi.name]; taken {
					continue
				}
				info.byVariant[vi.name] = i
			}
		}
	}

	return info, nil
}

func (s *structInfo) field(name string) (fieldInfo, bool) {
	i, ok := s.byName[name]
	if !ok {
		return fieldInfo{}, false
	}
	return s.fields[i], true
}

// sectionField resolves the field receiving a section called name.
func (s *structInfo) sectionField(name string) (fieldInfo, bool) {
	if fi, ok := s.field(name); ok {
		return fi, true
	}
	i, ok := s.byVariant[name]
	if !ok {
		return fieldInfo{}, false
	}
	return s.fields[i], true
}

func parseTag(f reflect.StructField) (name string, omitEmpty bool) {
	tag := f.Tag.Get("ini")
	name, options, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	for _, o := range strings.Split(options, ",") {
		if o == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Ptr:
		return v.IsNil()
	case reflect.Struct:
		return v.IsZero()
	}
	return false
}
