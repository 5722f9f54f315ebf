package types

import (
	"encoding/json"
	"fmt"
	"slices"
)

// DataType determines what values a property accepts.
type DataType string

// Property data types.
const (
	DataTypeNull   DataType = "null"
	DataTypeBool   DataType = "bool"
	DataTypeNumber DataType = "number"
	DataTypeString DataType = "string"
	DataTypeArray  DataType = "array"
	DataTypeObject DataType = "object"
	DataTypeAny    DataType = "any"
)

// validDataTypes is the set of recognized data types.
var validDataTypes = map[DataType]bool{
	DataTypeNull:   true,
	DataTypeBool:   true,
	DataTypeNumber: true,
	DataTypeString: true,
	DataTypeArray:  true,
	DataTypeObject: true,
	DataTypeAny:    true,
}

// IsValid reports whether d is a recognized data type.
func (d DataType) IsValid() bool {
	return validDataTypes[d]
}

// DefaultValue returns the type-based default: nil for null and any, false
// for bool, int64(0) for number, "" for string, an empty slice for array and
// an empty object for object.
func (d DataType) DefaultValue() any {
	switch d {
	case DataTypeBool:
		return false
	case DataTypeNumber:
		return int64(0)
	case DataTypeString:
		return ""
	case DataTypeArray:
		return []any{}
	case DataTypeObject:
		return map[string]any{}
	default:
		return nil
	}
}

// Accepts reports whether v is a JSON-compatible value of this data type.
// Null and any accept every value; every type accepts nil.
func (d DataType) Accepts(v any) bool {
	if v == nil || d == DataTypeAny || d == DataTypeNull {
		return true
	}
	switch d {
	case DataTypeBool:
		_, ok := v.(bool)
		return ok
	case DataTypeNumber:
		switch v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
			return true
		}
		return false
	case DataTypeString:
		_, ok := v.(string)
		return ok
	case DataTypeArray:
		switch v.(type) {
		case []any, []string:
			return true
		}
		return false
	case DataTypeObject:
		_, ok := v.(map[string]any)
		return ok
	}
	return false
}

// SocketType is the direction of a property in a flow.
type SocketType string

// Socket types.
const (
	SocketNone   SocketType = "none"
	SocketInput  SocketType = "input"
	SocketOutput SocketType = "output"
)

// IsValid reports whether s is a recognized socket type.
func (s SocketType) IsValid() bool {
	switch s {
	case SocketNone, SocketInput, SocketOutput:
		return true
	}
	return false
}

// Mutability controls whether checked setters may change a property.
type Mutability string

// Mutability values.
const (
	Mutable   Mutability = "mutable"
	Immutable Mutability = "immutable"
)

// IsValid reports whether m is a recognized mutability.
func (m Mutability) IsValid() bool {
	return m == Mutable || m == Immutable
}

// PropertyType describes a property: its name, data type, direction,
// mutability and default value.
type PropertyType struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	DataType    DataType    `json:"data_type"`
	SocketType  SocketType  `json:"socket_type"`
	Mutability  Mutability  `json:"mutability"`
	Default     any         `json:"default,omitempty"`
	Extensions  []Extension `json:"extensions,omitempty"`
}

// NewPropertyType returns a mutable property without a socket.
func NewPropertyType(name string, dataType DataType) PropertyType {
	return PropertyType{
		Name:       name,
		DataType:   dataType,
		SocketType: SocketNone,
		Mutability: Mutable,
	}
}

// WithDescription returns a copy with the description set.
func (p PropertyType) WithDescription(description string) PropertyType {
	p.Description = description
	return p
}

// WithSocketType returns a copy with the socket type set.
func (p PropertyType) WithSocketType(socket SocketType) PropertyType {
	p.SocketType = socket
	return p
}

// WithMutability returns a copy with the mutability set.
func (p PropertyType) WithMutability(m Mutability) PropertyType {
	p.Mutability = m
	return p
}

// WithDefault returns a copy with an explicit default value.
func (p PropertyType) WithDefault(v any) PropertyType {
	p.Default = v
	return p
}

// DefaultValue returns the explicit default if set, otherwise the data-type
// default.
func (p PropertyType) DefaultValue() any {
	if p.Default != nil {
		return cloneValue(p.Default)
	}
	return p.DataType.DefaultValue()
}

// Validate checks the name, data type, socket type and mutability. Empty
// socket type and mutability are accepted and mean none and mutable.
func (p PropertyType) Validate() error {
	if p.Name == "" {
		return ErrInvalidName
	}
	if !p.DataType.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidDataType, p.DataType)
	}
	if p.SocketType != "" && !p.SocketType.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidSocketType, p.SocketType)
	}
	if p.Mutability != "" && !p.Mutability.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidMutability, p.Mutability)
	}
	if p.Default != nil && !p.DataType.Accepts(p.Default) {
		return fmt.Errorf("%w: default of %q", ErrTypeMismatch, p.Name)
	}
	return nil
}

// EffectiveMutability treats an empty mutability as mutable.
func (p PropertyType) EffectiveMutability() Mutability {
	if p.Mutability == "" {
		return Mutable
	}
	return p.Mutability
}

func (p PropertyType) itemKey() string { return p.Name }
func (p PropertyType) sortKey() string { return p.Name }

func (p PropertyType) clone() PropertyType {
	p.Default = cloneValue(p.Default)
	if p.Extensions != nil {
		exts := make([]Extension, len(p.Extensions))
		for i, e := range p.Extensions {
			exts[i] = e.clone()
		}
		p.Extensions = exts
	}
	return p
}

// PropertyTypes is a concurrent set of property types keyed by name. The zero
// value is empty and ready to use.
type PropertyTypes struct {
	set keyedSet[string, PropertyType]
}

// NewPropertyTypes returns a set holding props. Later duplicates win.
func NewPropertyTypes(props ...PropertyType) *PropertyTypes {
	p := &PropertyTypes{}
	p.set.replaceAll(props)
	return p
}

// Add inserts prop. Returns ErrPropertyAlreadyExists if the name is taken.
func (p *PropertyTypes) Add(prop PropertyType) error {
	if !p.set.add(prop) {
		return fmt.Errorf("%w: %s", ErrPropertyAlreadyExists, prop.Name)
	}
	return nil
}

// Update replaces the property called name with prop, renaming it when
// prop.Name differs. Returns the previous definition, ErrPropertyDoesNotExist
// if name is unknown, or ErrPropertyAlreadyExists if the rename target exists.
func (p *PropertyTypes) Update(name string, prop PropertyType) (PropertyType, error) {
	old, found, conflict := p.set.update(name, prop)
	switch {
	case !found:
		return PropertyType{}, fmt.Errorf("%w: %s", ErrPropertyDoesNotExist, name)
	case conflict:
		return PropertyType{}, fmt.Errorf("%w: %s", ErrPropertyAlreadyExists, prop.Name)
	}
	return old, nil
}

// Remove deletes the property called name and returns it.
func (p *PropertyTypes) Remove(name string) (PropertyType, error) {
	prop, ok := p.set.remove(name)
	if !ok {
		return PropertyType{}, fmt.Errorf("%w: %s", ErrPropertyDoesNotExist, name)
	}
	return prop, nil
}

// Push inserts or overwrites prop.
func (p *PropertyTypes) Push(prop PropertyType) {
	p.set.upsert(prop)
}

// Get returns the property called name.
func (p *PropertyTypes) Get(name string) (PropertyType, bool) {
	return p.set.get(name)
}

// Has reports whether a property called name exists.
func (p *PropertyTypes) Has(name string) bool {
	return p.set.has(name)
}

// Len returns the number of properties.
func (p *PropertyTypes) Len() int {
	return p.set.len()
}

// Names returns the sorted property names.
func (p *PropertyTypes) Names() []string {
	props := p.ToSlice()
	names := make([]string, len(props))
	for i, prop := range props {
		names[i] = prop.Name
	}
	return names
}

// ToSlice returns the properties sorted by name.
func (p *PropertyTypes) ToSlice() []PropertyType {
	return p.set.slice()
}

// ReplaceAll replaces the contents with props.
func (p *PropertyTypes) ReplaceAll(props ...PropertyType) {
	p.set.replaceAll(props)
}

// Merge adds every property whose name is not already defined and returns
// the added ones. Existing definitions win.
func (p *PropertyTypes) Merge(props ...PropertyType) []PropertyType {
	return p.set.addMissing(props)
}

// Clone returns an independent copy.
func (p *PropertyTypes) Clone() *PropertyTypes {
	return NewPropertyTypes(p.ToSlice()...)
}

// Equal compares both sets by sorted snapshot of names and definitions,
// ignoring default and extension payloads.
func (p *PropertyTypes) Equal(other *PropertyTypes) bool {
	return slices.EqualFunc(p.ToSlice(), other.ToSlice(), func(a, b PropertyType) bool {
		return a.Name == b.Name && a.DataType == b.DataType &&
			a.SocketType == b.SocketType && a.Mutability == b.Mutability
	})
}

// MarshalJSON encodes the properties as an array sorted by name.
func (p *PropertyTypes) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToSlice())
}

// UnmarshalJSON replaces the contents with the decoded array.
func (p *PropertyTypes) UnmarshalJSON(data []byte) error {
	var props []PropertyType
	if err := json.Unmarshal(data, &props); err != nil {
		return err
	}
	p.ReplaceAll(props...)
	return nil
}
