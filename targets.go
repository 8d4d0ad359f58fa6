package ini

import (
	"encoding"
	"fmt"
	"reflect"
)

// table is a decoding target that receives keyed values: the top level of a
// document or the entries of a section.
type table interface {
	// Returns the value that should receive key. section is true when key is
	// the name of a section. ok is false when the table has no slot for key.
	slot(key string, section bool) (v reflect.Value, ok bool, err error)

	// Stores a slot previously returned by slot once it has been decoded.
	commit(key string, v reflect.Value) error
}

// structTable targets the fields of a struct. Slots are the fields
// themselves, so commit has nothing to do.
type structTable struct {
	v    reflect.Value
	info *structInfo
}

func newStructTable(v reflect.Value) (structTable, error) {
	info, err := structInfoOf(v.Type())
	if err != nil {
		return structTable{}, err
	}
	return structTable{v: v, info: info}, nil
}

func (t structTable) slot(key string, section bool) (reflect.Value, bool, error) {
	var fi fieldInfo
	var ok bool
	if section {
		fi, ok = t.info.sectionField(key)
	} else {
		fi, ok = t.info.field(key)
	}
	if !ok {
		return reflect.Value{}, false, nil
	}
	return t.v.Field(fi.index), true, nil
}

func (t structTable) commit(string, reflect.Value) error {
	return nil
}

// mapTable targets the keys of a map. Map elements are not addressable, so
// each slot is a fresh copy of the current element that is stored back on
// commit.
type mapTable struct {
	v reflect.Value
}

func newMapTable(v reflect.Value) (mapTable, error) {
	keyType := v.Type().Key()
	if keyType.Kind() != reflect.String && !reflect.PtrTo(keyType).Implements(textUnmarshalerType) {
		return mapTable{}, fmt.Errorf("cannot decode into a map with %s keys: %w", keyType, ErrNonStringKey)
	}
	if v.IsNil() {
		v.Set(reflect.MakeMap(v.Type()))
	}
	return mapTable{v: v}, nil
}

func (t mapTable) key(s string) (reflect.Value, error) {
	keyType := t.v.Type().Key()
	if reflect.PtrTo(keyType).Implements(textUnmarshalerType) {
		k := reflect.New(keyType)
		if err := k.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
			return reflect.Value{}, err
		}
		return k.Elem(), nil
	}
	return reflect.ValueOf(s).Convert(keyType), nil
}

func (t mapTable) slot(key string, _ bool) (reflect.Value, bool, error) {
	k, err := t.key(key)
	if err != nil {
		return reflect.Value{}, false, err
	}

	elem := reflect.New(t.v.Type().Elem()).Elem()
	if existing := t.v.MapIndex(k); existing.IsValid() {
		elem.Set(existing)
	}
	return elem, true, nil
}

func (t mapTable) commit(key string, v reflect.Value) error {
	k, err := t.key(key)
	if err != nil {
		return err
	}
	t.v.SetMapIndex(k, v)
	return nil
}
