package types

// EntityType is a concrete entity type. Its effective property set is its own
// properties plus those of every referenced component once they have been
// merged.
type EntityType struct {
	Type        EntityTypeID     `json:"type"`
	Description string           `json:"description,omitempty"`
	Components  ComponentTypeIDs `json:"components"`
	Properties  PropertyTypes    `json:"properties"`
	Extensions  Extensions       `json:"extensions"`
}

// NewEntityType returns an empty entity type.
func NewEntityType(ty EntityTypeID, description string) *EntityType {
	return &EntityType{Type: ty, Description: description}
}

// WithComponents adds component references and returns t.
func (t *EntityType) WithComponents(components ...ComponentTypeID) *EntityType {
	t.Components.InsertAll(components...)
	return t
}

// WithProperties adds or replaces properties and returns t.
func (t *EntityType) WithProperties(props ...PropertyType) *EntityType {
	for _, p := range props {
		t.Properties.Push(p)
	}
	return t
}

// WithExtensions adds or replaces extensions and returns t.
func (t *EntityType) WithExtensions(exts ...Extension) *EntityType {
	for _, ext := range exts {
		t.Extensions.Push(ext)
	}
	return t
}

func (t *EntityType) TypeID() EntityTypeID               { return t.Type }
func (t *EntityType) TypeDefinition() TypeDefinition     { return t.Type.TypeDefinition() }
func (t *EntityType) ComponentSet() *ComponentTypeIDs    { return &t.Components }
func (t *EntityType) PropertySet() *PropertyTypes        { return &t.Properties }
func (t *EntityType) ExtensionSet() *Extensions          { return &t.Extensions }
func (t *EntityType) IsA(component ComponentTypeID) bool { return t.Components.Contains(component) }

// Clone returns a deep copy.
func (t *EntityType) Clone() *EntityType {
	out := &EntityType{Type: t.Type, Description: t.Description}
	out.Components.ReplaceAll(t.Components.ToSlice()...)
	out.Properties.ReplaceAll(t.Properties.ToSlice()...)
	out.Extensions.ReplaceAll(t.Extensions.ToSlice()...)
	return out
}
