package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamespaceAppend(t *testing.T) {
	ns, err := NewTopLevelNamespace("demo")
	require.NoError(t, err)
	assert.True(t, ns.IsPath())

	ns, err = ns.Append("sub-system")
	require.NoError(t, err)
	assert.Equal(t, "demo::sub-system", ns.String())

	typed, err := ns.Append("Counter")
	require.NoError(t, err)
	assert.True(t, typed.IsType())
	assert.False(t, typed.IsPath())

	_, err = typed.Append("more")
	assert.ErrorIs(t, err, ErrTypeCannotBeAppended)
}

func TestValidateSegment(t *testing.T) {
	tests := []struct {
		segment string
		wantErr error
	}{
		{"demo", nil},
		{"my-ns", nil},
		{"snake_case", nil},
		{"v2", nil},
		{"", ErrEmptySegment},
		{"a__b", ErrSegmentContainsSeparator},
		{"a::b", ErrSegmentContainsSeparator},
		{"_lead", ErrSegmentContainsSeparator},
		{"trail_", ErrSegmentContainsSeparator},
		{"sp ace", ErrInvalidSegmentCharacter},
		{"ümlaut", ErrInvalidSegmentCharacter},
		{"dot.ted", ErrInvalidSegmentCharacter},
	}
	for _, tt := range tests {
		t.Run(tt.segment, func(t *testing.T) {
			err := ValidateSegment(tt.segment)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			var segErr *SegmentError
			assert.True(t, errors.As(err, &segErr))
		})
	}
}

func TestParseNamespace(t *testing.T) {
	ns, err := ParseNamespace("a::b::C")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "C"}, ns.Segments())
	assert.Equal(t, "C", ns.Last())
	parent, ok := ns.Parent()
	require.True(t, ok)
	assert.Equal(t, "a::b", parent.String())
	assert.True(t, ns.HasPrefix(MustNamespace("a")))
	assert.False(t, ns.HasPrefix(MustNamespace("ab")))

	_, err = ParseNamespace("a::Type::b")
	assert.ErrorIs(t, err, ErrTypeCannotBeAppended)
	_, err = ParseNamespace("")
	assert.ErrorIs(t, err, ErrEmptyNamespace)
	_, err = ParseNamespace("a::::b")
	assert.ErrorIs(t, err, ErrEmptySegment)
}

func TestTypeIDRoundTrip(t *testing.T) {
	pairs := []struct{ namespace, name string }{
		{"demo", "Counter"},
		{"core::flow", "Generic"},
		{"my-ns::v2", "A1"},
		{"x", "Snake_Case"},
	}
	for _, p := range pairs {
		t.Run(p.namespace+"/"+p.name, func(t *testing.T) {
			c, err := NewComponentTypeID(p.namespace, p.name)
			require.NoError(t, err)
			assertRoundTrip(t, c, "c")

			e, err := NewEntityTypeID(p.namespace, p.name)
			require.NoError(t, err)
			assertRoundTrip(t, e, "e")

			r, err := NewRelationTypeID(p.namespace, p.name)
			require.NoError(t, err)
			assertRoundTrip(t, r, "r")

			f, err := NewFlowTypeID(p.namespace, p.name)
			require.NoError(t, err)
			assertRoundTrip(t, f, "f")

			x, err := NewExtensionTypeID(p.namespace, p.name)
			require.NoError(t, err)
			assertRoundTrip(t, x, "x")
		})
	}
}

func assertRoundTrip[K KindMarker](t *testing.T, id TypeID[K], tag string) {
	t.Helper()
	s := id.String()
	assert.Equal(t, tag+"__"+id.Namespace().String()+"__"+id.TypeName(), s)
	parsed, err := ParseTypeID[K](s)
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	def, err := ParseTypeDefinition(s)
	require.NoError(t, err)
	assert.Equal(t, id.TypeDefinition(), def)
	back, err := TypeIDFromDefinition[K](def)
	require.NoError(t, err)
	assert.Equal(t, id, back)
}

func TestParseTypeIDMalformed(t *testing.T) {
	tests := []struct {
		input     string
		wantField Field
		wantErr   error
	}{
		{"", FieldKind, ErrUnknownKind},
		{"q__demo__Counter", FieldKind, ErrUnknownKind},
		{"C__demo__Counter", FieldKind, ErrUnknownKind},
		{"e", FieldNamespace, ErrEmptyNamespace},
		{"e____Counter", FieldNamespace, ErrEmptyNamespace},
		{"e__demo", FieldName, ErrEmptyTypeName},
		{"e__demo__", FieldName, ErrEmptyTypeName},
		{"e__demo__counter", FieldName, ErrNotATypeSegment},
		{"e__demo::Type__Counter", FieldNamespace, ErrTypeCannotBeAppended},
		{"e__demo__Counter__extra", FieldTrailing, ErrTrailingFields},
		{"e__demo__Counter__", FieldTrailing, ErrTrailingFields},
		{"e__de mo__Counter", FieldNamespace, ErrInvalidSegmentCharacter},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseTypeDefinition(tt.input)
			require.Error(t, err)
			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.wantField, perr.Field)
			assert.Equal(t, tt.input, perr.Input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseTypeIDKindMismatch(t *testing.T) {
	_, err := ParseTypeID[EntityTypeTag]("c__demo__Labeled")
	require.Error(t, err)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, FieldKind, perr.Field)
	assert.ErrorIs(t, err, ErrKindMismatch)

	def, err := ParseTypeDefinition("r__demo__Owns")
	require.NoError(t, err)
	_, err = TypeIDFromDefinition[FlowTypeTag](def)
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestTypeIDJSON(t *testing.T) {
	id, err := NewEntityTypeID("demo", "Counter")
	require.NoError(t, err)

	data, err := json.Marshal(map[string]EntityTypeID{"ty": id})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ty":"e__demo__Counter"}`, string(data))

	var out map[string]EntityTypeID
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, id, out["ty"])

	var wrong struct{ Ty ComponentTypeID }
	assert.Error(t, json.Unmarshal([]byte(`{"Ty":"e__demo__Counter"}`), &wrong))

	_, err = EntityTypeID{}.MarshalText()
	assert.ErrorIs(t, err, ErrInvalidTypeID)
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		byTag, err := ParseKind(k.Tag())
		require.NoError(t, err)
		assert.Equal(t, k, byTag)
		byName, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, byName)
	}
	_, err := ParseKind("widget")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestBehaviourTypeID(t *testing.T) {
	id, err := NewBehaviourTypeID("logical", "Toggle")
	require.NoError(t, err)
	assert.Equal(t, "logical__Toggle", id.String())

	parsed, err := ParseBehaviourTypeID("logical__Toggle")
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseBehaviourTypeID("logical__Toggle__x")
	assert.ErrorIs(t, err, ErrTrailingFields)
	_, err = ParseBehaviourTypeID("Toggle")
	assert.ErrorIs(t, err, ErrEmptyNamespace)
}
