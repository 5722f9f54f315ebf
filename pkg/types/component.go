package types

// Component is a reusable bundle of properties and extensions that entity
// types, relation types and individual instances mix in. Its Type never
// changes; properties and extensions are mutated in place.
//
// Components hold locks and are passed by pointer.
type Component struct {
	Type        ComponentTypeID `json:"type"`
	Description string          `json:"description,omitempty"`
	Properties  PropertyTypes   `json:"properties"`
	Extensions  Extensions      `json:"extensions"`
}

// NewComponent returns a component holding props.
func NewComponent(ty ComponentTypeID, description string, props ...PropertyType) *Component {
	c := &Component{Type: ty, Description: description}
	c.Properties.ReplaceAll(props...)
	return c
}

// WithExtensions adds exts, replacing extensions of the same type, and
// returns c.
func (c *Component) WithExtensions(exts ...Extension) *Component {
	for _, ext := range exts {
		c.Extensions.Push(ext)
	}
	return c
}

// TypeID returns the component type id.
func (c *Component) TypeID() ComponentTypeID { return c.Type }

// TypeDefinition returns the kind-erased type id.
func (c *Component) TypeDefinition() TypeDefinition { return c.Type.TypeDefinition() }

// PropertySet returns the live property set.
func (c *Component) PropertySet() *PropertyTypes { return &c.Properties }

// ExtensionSet returns the live extension set.
func (c *Component) ExtensionSet() *Extensions { return &c.Extensions }

// HasProperty reports whether the component declares name.
func (c *Component) HasProperty(name string) bool {
	return c.Properties.Has(name)
}

// Clone returns a deep copy.
func (c *Component) Clone() *Component {
	out := &Component{Type: c.Type, Description: c.Description}
	out.Properties.ReplaceAll(c.Properties.ToSlice()...)
	out.Extensions.ReplaceAll(c.Extensions.ToSlice()...)
	return out
}
