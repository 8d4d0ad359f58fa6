package ini_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pelletier/go-ini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:funlen
func TestMarshal(t *testing.T) {
	t.Parallel()

	type inner struct {
		A string `ini:"a"`
		B int    `ini:"b"`
	}

	examples := []struct {
		desc     string
		v        interface{}
		expected string
	}{
		{
			desc:     "simple map and string",
			v:        map[string]string{"hello": "world"},
			expected: "hello=world\n",
		},
		{
			desc:     "map keys are sorted",
			v:        map[string]int{"b": 2, "a": 1, "c": 3},
			expected: "a=1\nb=2\nc=3\n",
		},
		{
			desc: "map scalars before sections",
			v: map[string]interface{}{
				"z":       "last in order",
				"section": map[string]string{"k": "v"},
				"a":       "first",
			},
			expected: "a=first\nz=last in order\n[section]\nk=v\n",
		},
		{
			desc: "map in map",
			v: map[string]map[string]string{
				"table": {"hello": "world"},
			},
			expected: "[table]\nhello=world\n",
		},
		{
			desc: "struct in declaration order",
			v: struct {
				Name    string  `ini:"name"`
				Count   uint8   `ini:"count"`
				Ratio   float64 `ini:"ratio"`
				Delta   int64
				Section inner `ini:"section"`
			}{
				Name:    "x",
				Count:   255,
				Ratio:   0.5,
				Delta:   -3,
				Section: inner{A: "y", B: 7},
			},
			expected: "name=x\ncount=255\nratio=0.5\nDelta=-3\n[section]\na=y\nb=7\n",
		},
		{
			desc: "pointer to struct",
			v: &struct {
				A *string
			}{A: strPtr("p")},
			expected: "A=p\n",
		},
		{
			desc: "omitempty",
			v: struct {
				A string  `ini:"a,omitempty"`
				B *inner  `ini:"b,omitempty"`
				C string  `ini:"c"`
				D *string `ini:"-"`
			}{C: "kept"},
			expected: "c=kept\n",
		},
		{
			desc:     "float32",
			v:        map[string]float32{"f": 0.1},
			expected: "f=0.1\n",
		},
		{
			desc: "repeated sections",
			v: struct {
				Servers []inner `ini:"server"`
			}{Servers: []inner{{A: "1"}, {A: "2"}}},
			expected: "[server]\na=1\nb=0\n[server]\na=2\nb=0\n",
		},
		{
			desc: "unions",
			v: struct {
				Default shape   `ini:"default"`
				Shapes  []shape `ini:"shapes"`
			}{
				Default: shape{None: &struct{}{}},
				Shapes: []shape{
					{Circle: &circle{Radius: 2.5}},
					{Square: &square{Side: 3}},
				},
			},
			expected: "default=None\n[Circle]\nr=2.5\n[square]\nside=3\n",
		},
		{
			desc: "text marshaler",
			v: struct {
				Level level `ini:"level"`
			}{Level: 2},
			expected: "level=high\n",
		},
		{
			desc:     "empty struct",
			v:        struct{}{},
			expected: "",
		},
	}

	for _, e := range examples {
		e := e
		t.Run(e.desc, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			err := ini.NewEncoder(&buf).SetLineEnding(ini.LF).Encode(e.v)
			require.NoError(t, err)
			assert.Equal(t, e.expected, buf.String())
		})
	}
}

func strPtr(s string) *string {
	return &s
}

func TestMarshal_CRLFByDefault(t *testing.T) {
	t.Parallel()

	b, err := ini.Marshal(map[string]map[string]string{"s": {"k": "v"}})
	require.NoError(t, err)
	assert.Equal(t, "[s]\r\nk=v\r\n", string(b))
}

//nolint:funlen
func TestMarshal_Errors(t *testing.T) {
	t.Parallel()

	type inner struct {
		A string `ini:"a"`
	}

	examples := []struct {
		desc        string
		v           interface{}
		err         error
		unsupported ini.UnsupportedType
		key         string
	}{
		{
			desc: "scalar at top level",
			v:    "hello",
			err:  ini.ErrTopLevelMap,
		},
		{
			desc: "sequence at top level",
			v:    []personModel{{Person: &person{Name: "Ana"}}},
			err:  ini.ErrTopLevelMap,
		},
		{
			desc: "union at top level",
			v:    shape{Circle: &circle{}},
			err:  ini.ErrTopLevelMap,
		},
		{
			desc: "nil",
			v:    nil,
			err:  ini.ErrTopLevelMap,
		},
		{
			desc: "nil pointer",
			v:    (*inner)(nil),
			err:  ini.ErrTopLevelMap,
		},
		{
			desc: "scalar after section",
			v: struct {
				Section inner  `ini:"section"`
				Scalar  string `ini:"scalar"`
			}{Scalar: "x"},
			err: ini.ErrOrphanValue,
			key: "scalar",
		},
		{
			desc: "unit variant after section",
			v: struct {
				Section inner `ini:"section"`
				Shape   shape `ini:"shape"`
			}{Shape: shape{None: &struct{}{}}},
			err: ini.ErrOrphanValue,
			key: "shape",
		},
		{
			desc: "non string map key",
			v:    map[int]string{1: "a"},
			err:  ini.ErrNonStringKey,
		},
		{
			desc:        "bool",
			v:           map[string]bool{"b": true},
			unsupported: ini.UnsupportedBool,
			key:         "b",
		},
		{
			desc:        "bytes",
			v:           map[string][]byte{"b": []byte("x")},
			unsupported: ini.UnsupportedBytes,
			key:         "b",
		},
		{
			desc:        "nil pointer field",
			v:           struct{ P *string }{},
			unsupported: ini.UnsupportedNone,
			key:         "P",
		},
		{
			desc:        "nil interface",
			v:           map[string]interface{}{"i": nil},
			unsupported: ini.UnsupportedNone,
			key:         "i",
		},
		{
			desc:        "empty struct field",
			v:           struct{ U struct{} }{},
			unsupported: ini.UnsupportedUnit,
			key:         "U",
		},
		{
			desc:        "sequence of scalars",
			v:           struct{ S []string }{S: []string{"a"}},
			unsupported: ini.UnsupportedSeq,
			key:         "S",
		},
		{
			desc: "sequence inside a section",
			v: map[string]map[string][]string{
				"s": {"list": {"a"}},
			},
			unsupported: ini.UnsupportedSeq,
			key:         "list",
		},
		{
			desc: "map inside a section",
			v: map[string]map[string]map[string]string{
				"s": {"nested": {"a": "b"}},
			},
			unsupported: ini.UnsupportedMap,
			key:         "nested",
		},
	}

	for _, e := range examples {
		e := e
		t.Run(e.desc, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			err := ini.NewEncoder(&buf).Encode(e.v)
			require.Error(t, err)
			assert.Empty(t, buf.String())

			if e.err != nil {
				assert.ErrorIs(t, err, e.err)
			} else {
				var ue *ini.UnsupportedTypeError
				require.True(t, errors.As(err, &ue), "unexpected error: %s", err)
				assert.Equal(t, e.unsupported, ue.Type)
			}

			var ee *ini.EncodeError
			require.True(t, errors.As(err, &ee))
			assert.Equal(t, e.key, ee.Key)
		})
	}
}

func TestMarshal_UnionErrors(t *testing.T) {
	t.Parallel()

	type holder struct {
		Shape shape `ini:"shape"`
	}

	_, err := ini.Marshal(holder{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no variant set")

	_, err = ini.Marshal(holder{Shape: shape{None: &struct{}{}, Circle: &circle{}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than one variant set")

	_, err = ini.Marshal(map[string]map[string]shape{
		"s": {"k": {Circle: &circle{}}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be encoded inside a section")

	_, err = ini.Marshal(struct{ E element }{E: element{Version: new(int)}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be encoded as a section")
}

func TestMarshal_RoundTrip(t *testing.T) {
	t.Parallel()

	model := smokeExpected()

	b, err := ini.Marshal(model)
	require.NoError(t, err)

	var decoded smokeModel
	require.NoError(t, ini.Unmarshal(b, &decoded))
	if diff := cmp.Diff(model, decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshal_RoundTripUnions(t *testing.T) {
	t.Parallel()

	type drawing struct {
		Title   string            `ini:"title"`
		Style   shape             `ini:"style"`
		Shapes  []shape           `ini:"shapes"`
		Options map[string]string `ini:"options"`
	}

	model := drawing{
		Title: "d",
		Style: shape{None: &struct{}{}},
		Shapes: []shape{
			{Circle: &circle{Radius: 1}},
			{Square: &square{Side: 2}},
			{Circle: &circle{Radius: 3}},
		},
		Options: map[string]string{"a": "b"},
	}

	b, err := ini.Marshal(model)
	require.NoError(t, err)

	var decoded drawing
	require.NoError(t, ini.Unmarshal(b, &decoded))
	if diff := cmp.Diff(model, decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshal_SectionConflicts(t *testing.T) {
	t.Parallel()

	type drawing struct {
		Style  shape   `ini:"style"`
		Shapes []shape `ini:"shapes"`
	}
	type labeled struct {
		Name  string `ini:"name"`
		Kind  shape  `ini:"kind"`
		Shape shape  `ini:"shape"`
	}
	type shadowed struct {
		Circle string `ini:"Circle"`
		Main   shape  `ini:"main"`
	}

	examples := []struct {
		desc string
		v    interface{}
		key  string
	}{
		{
			desc: "union field and slice of the same union",
			v: drawing{
				Style:  shape{Circle: &circle{Radius: 1}},
				Shapes: []shape{{Square: &square{Side: 2}}},
			},
			key: "style",
		},
		{
			desc: "two fields of the same union",
			v: labeled{
				Name:  "n",
				Kind:  shape{None: &struct{}{}},
				Shape: shape{Circle: &circle{Radius: 3}},
			},
			key: "shape",
		},
		{
			desc: "variant named like another field",
			v: shadowed{
				Circle: "x",
				Main:   shape{Circle: &circle{}},
			},
			key: "main",
		},
		{
			desc: "map key other than the variant name",
			v:    map[string]shape{"k": {Circle: &circle{}}},
			key:  "k",
		},
		{
			desc: "map of union slices",
			v:    map[string][]shape{"list": {{Square: &square{}}}},
			key:  "list",
		},
	}

	for _, e := range examples {
		e := e
		t.Run(e.desc, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			err := ini.NewEncoder(&buf).Encode(e.v)
			require.ErrorIs(t, err, ini.ErrSectionConflict)
			assert.Empty(t, buf.String())

			var ee *ini.EncodeError
			require.True(t, errors.As(err, &ee))
			assert.Equal(t, e.key, ee.Key)
		})
	}
}

func TestMarshal_RoundTripUnionSections(t *testing.T) {
	t.Parallel()

	type single struct {
		Name string `ini:"name"`
		Main shape  `ini:"main"`
	}

	model := single{Name: "n", Main: shape{Circle: &circle{Radius: 1.5}}}
	b, err := ini.Marshal(model)
	require.NoError(t, err)

	var decoded single
	require.NoError(t, ini.Unmarshal(b, &decoded))
	if diff := cmp.Diff(model, decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	byVariant := map[string]shape{"square": {Square: &square{Side: 4}}}
	b, err = ini.Marshal(byVariant)
	require.NoError(t, err)

	var decodedMap map[string]shape
	require.NoError(t, ini.Unmarshal(b, &decodedMap))
	if diff := cmp.Diff(byVariant, decodedMap); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

type pointerlessUnion struct {
	ini.Union
	A map[string]string
}

func TestMarshal_MalformedUnionField(t *testing.T) {
	t.Parallel()

	_, err := ini.Marshal(struct {
		A string             `ini:"a"`
		B []pointerlessUnion `ini:"b,omitempty"`
	}{A: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a pointer")
	assert.Contains(t, err.Error(), "field B")
}
