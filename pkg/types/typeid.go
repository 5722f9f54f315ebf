package types

import (
	"fmt"
	"strings"
)

// Kind discriminates the five families of type ids.
type Kind uint8

// Type id kinds.
const (
	KindComponent Kind = iota + 1
	KindEntityType
	KindRelationType
	KindFlowType
	KindExtension
)

// Kinds lists every kind in canonical order.
var Kinds = []Kind{KindComponent, KindEntityType, KindRelationType, KindFlowType, KindExtension}

var kindTags = map[Kind]string{
	KindComponent:    "c",
	KindEntityType:   "e",
	KindRelationType: "r",
	KindFlowType:     "f",
	KindExtension:    "x",
}

var kindNames = map[Kind]string{
	KindComponent:    "component",
	KindEntityType:   "entity_type",
	KindRelationType: "relation_type",
	KindFlowType:     "flow_type",
	KindExtension:    "extension",
}

// Tag returns the one-letter tag used in canonical type id strings.
func (k Kind) Tag() string {
	return kindTags[k]
}

// String returns the kind's name ("entity_type").
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// IsValid reports whether k is one of the five known kinds.
func (k Kind) IsValid() bool {
	_, ok := kindTags[k]
	return ok
}

// KindFromTag resolves a one-letter tag.
func KindFromTag(tag string) (Kind, bool) {
	for k, t := range kindTags {
		if t == tag {
			return k, true
		}
	}
	return 0, false
}

// ParseKind resolves a kind by name ("entity_type") or tag ("e").
func ParseKind(s string) (Kind, error) {
	if k, ok := KindFromTag(s); ok {
		return k, nil
	}
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// KindMarker is satisfied by the marker types that tag a [TypeID] with its
// kind. It cannot be implemented outside this package.
type KindMarker interface {
	kind() Kind
}

// Kind markers.
type (
	ComponentTag    struct{}
	EntityTypeTag   struct{}
	RelationTypeTag struct{}
	FlowTypeTag     struct{}
	ExtensionTag    struct{}
)

func (ComponentTag) kind() Kind    { return KindComponent }
func (EntityTypeTag) kind() Kind   { return KindEntityType }
func (RelationTypeTag) kind() Kind { return KindRelationType }
func (FlowTypeTag) kind() Kind     { return KindFlowType }
func (ExtensionTag) kind() Kind    { return KindExtension }

// TypeID is a NamespacedType tagged with a fixed kind. Values are immutable
// and comparable, so they can be used as map keys.
type TypeID[K KindMarker] struct {
	nt NamespacedType
}

// The five type id families.
type (
	ComponentTypeID = TypeID[ComponentTag]
	EntityTypeID    = TypeID[EntityTypeTag]
	RelationTypeID  = TypeID[RelationTypeTag]
	FlowTypeID      = TypeID[FlowTypeTag]
	ExtensionTypeID = TypeID[ExtensionTag]
)

// NewTypeID wraps nt.
func NewTypeID[K KindMarker](nt NamespacedType) TypeID[K] {
	return TypeID[K]{nt: nt}
}

// NewTypeIDFromType validates namespace and typeName and builds the id.
func NewTypeIDFromType[K KindMarker](namespace, typeName string) (TypeID[K], error) {
	nt, err := NewNamespacedTypeFromStrings(namespace, typeName)
	if err != nil {
		return TypeID[K]{}, err
	}
	return TypeID[K]{nt: nt}, nil
}

// ParseTypeID parses a canonical "<k>__<namespace>__<Name>" string and
// rejects strings whose kind tag does not match K.
func ParseTypeID[K KindMarker](s string) (TypeID[K], error) {
	def, err := ParseTypeDefinition(s)
	if err != nil {
		return TypeID[K]{}, err
	}
	id, err := TypeIDFromDefinition[K](def)
	if err != nil {
		return TypeID[K]{}, &ParseError{Input: s, Field: FieldKind, Err: err}
	}
	return id, nil
}

// TypeIDFromDefinition converts a kind-erased definition, failing with
// ErrKindMismatch when the kinds differ.
func TypeIDFromDefinition[K KindMarker](def TypeDefinition) (TypeID[K], error) {
	var marker K
	if def.Kind != marker.kind() {
		return TypeID[K]{}, fmt.Errorf("%w: expected %s, got %s", ErrKindMismatch, marker.kind(), def.Kind)
	}
	return TypeID[K]{nt: def.NamespacedType}, nil
}

// NewComponentTypeID builds a component type id.
func NewComponentTypeID(namespace, typeName string) (ComponentTypeID, error) {
	return NewTypeIDFromType[ComponentTag](namespace, typeName)
}

// NewEntityTypeID builds an entity type id.
func NewEntityTypeID(namespace, typeName string) (EntityTypeID, error) {
	return NewTypeIDFromType[EntityTypeTag](namespace, typeName)
}

// NewRelationTypeID builds a relation type id.
func NewRelationTypeID(namespace, typeName string) (RelationTypeID, error) {
	return NewTypeIDFromType[RelationTypeTag](namespace, typeName)
}

// NewFlowTypeID builds a flow type id.
func NewFlowTypeID(namespace, typeName string) (FlowTypeID, error) {
	return NewTypeIDFromType[FlowTypeTag](namespace, typeName)
}

// NewExtensionTypeID builds an extension type id.
func NewExtensionTypeID(namespace, typeName string) (ExtensionTypeID, error) {
	return NewTypeIDFromType[ExtensionTag](namespace, typeName)
}

// Kind returns the id's kind.
func (id TypeID[K]) Kind() Kind {
	var marker K
	return marker.kind()
}

// NamespacedType returns the wrapped namespaced type.
func (id TypeID[K]) NamespacedType() NamespacedType {
	return id.nt
}

// Namespace returns the path namespace.
func (id TypeID[K]) Namespace() Namespace {
	return id.nt.namespace
}

// TypeName returns the type name.
func (id TypeID[K]) TypeName() string {
	return id.nt.typeName
}

// TypeDefinition erases the kind into a [TypeDefinition].
func (id TypeID[K]) TypeDefinition() TypeDefinition {
	return TypeDefinition{Kind: id.Kind(), NamespacedType: id.nt}
}

// IsZero reports whether id is the zero value.
func (id TypeID[K]) IsZero() bool {
	return id.nt.IsZero()
}

// Compare orders ids by namespace, then type name.
func (id TypeID[K]) Compare(other TypeID[K]) int {
	return id.nt.Compare(other.nt)
}

// String returns the canonical "<k>__<namespace>__<Name>" form.
func (id TypeID[K]) String() string {
	return id.TypeDefinition().String()
}

// MarshalText implements encoding.TextMarshaler.
func (id TypeID[K]) MarshalText() ([]byte, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("%w: zero %s id", ErrInvalidTypeID, id.Kind())
	}
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *TypeID[K]) UnmarshalText(text []byte) error {
	parsed, err := ParseTypeID[K](string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id TypeID[K]) newFrom(nt NamespacedType) TypeID[K] {
	return TypeID[K]{nt: nt}
}

// TypeDefinition is the kind-erased form of a type id.
type TypeDefinition struct {
	Kind Kind
	NamespacedType
}

// ParseTypeDefinition parses a canonical type id of any kind. Errors are
// *ParseError values naming the offending field.
func ParseTypeDefinition(s string) (TypeDefinition, error) {
	fields := strings.Split(s, TypeIDSeparator)
	kind, ok := KindFromTag(fields[0])
	if !ok {
		return TypeDefinition{}, &ParseError{Input: s, Field: FieldKind, Err: ErrUnknownKind}
	}
	if len(fields) < 2 || fields[1] == "" {
		return TypeDefinition{}, &ParseError{Input: s, Field: FieldNamespace, Err: ErrEmptyNamespace}
	}
	ns, err := ParseNamespace(fields[1])
	if err != nil {
		return TypeDefinition{}, &ParseError{Input: s, Field: FieldNamespace, Err: err}
	}
	if !ns.IsPath() {
		return TypeDefinition{}, &ParseError{Input: s, Field: FieldNamespace, Err: ErrTypeCannotBeAppended}
	}
	if len(fields) < 3 || fields[2] == "" {
		return TypeDefinition{}, &ParseError{Input: s, Field: FieldName, Err: ErrEmptyTypeName}
	}
	if err := ValidateTypeName(fields[2]); err != nil {
		return TypeDefinition{}, &ParseError{Input: s, Field: FieldName, Err: err}
	}
	if len(fields) > 3 {
		return TypeDefinition{}, &ParseError{Input: s, Field: FieldTrailing, Err: ErrTrailingFields}
	}
	return TypeDefinition{
		Kind:           kind,
		NamespacedType: NamespacedType{namespace: ns, typeName: fields[2]},
	}, nil
}

// String returns the canonical form.
func (d TypeDefinition) String() string {
	return d.Kind.Tag() + TypeIDSeparator + d.namespace.path + TypeIDSeparator + d.typeName
}

// Compare orders by kind, then namespaced type.
func (d TypeDefinition) Compare(other TypeDefinition) int {
	if d.Kind != other.Kind {
		if d.Kind < other.Kind {
			return -1
		}
		return 1
	}
	return d.NamespacedType.Compare(other.NamespacedType)
}

// MarshalText implements encoding.TextMarshaler.
func (d TypeDefinition) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *TypeDefinition) UnmarshalText(text []byte) error {
	parsed, err := ParseTypeDefinition(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
