package types

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// Extension attaches arbitrary structured data to a type. When EntityType is
// set the value only applies to instances of that entity type.
//
// Equality and ordering are by Type alone. Hash covers Type and Description;
// Value is ignored by both.
type Extension struct {
	Type        ExtensionTypeID `json:"type"`
	EntityType  *EntityTypeID   `json:"entity_type,omitempty"`
	Description string          `json:"description,omitempty"`
	Value       any             `json:"value,omitempty"`
}

// NewExtension returns an unconstrained extension.
func NewExtension(ty ExtensionTypeID, description string, value any) Extension {
	return Extension{Type: ty, Description: description, Value: value}
}

// ForEntityType returns a copy constrained to entityType.
func (e Extension) ForEntityType(entityType EntityTypeID) Extension {
	e.EntityType = &entityType
	return e
}

// AppliesTo reports whether the extension is meaningful on instances of
// entityType.
func (e Extension) AppliesTo(entityType EntityTypeID) bool {
	return e.EntityType == nil || *e.EntityType == entityType
}

// Equal reports whether both extensions have the same type.
func (e Extension) Equal(other Extension) bool {
	return e.Type == other.Type
}

// Compare orders extensions by type.
func (e Extension) Compare(other Extension) int {
	return e.Type.Compare(other.Type)
}

// Hash returns a hash of the type and description.
func (e Extension) Hash() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(e.Type.String())
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(e.Description)
	return d.Sum64()
}

func (e Extension) itemKey() ExtensionTypeID { return e.Type }
func (e Extension) sortKey() string          { return e.Type.NamespacedType().String() }

func (e Extension) clone() Extension {
	e.Value = cloneValue(e.Value)
	if e.EntityType != nil {
		et := *e.EntityType
		e.EntityType = &et
	}
	return e
}

// Extensions is a concurrent set of extensions keyed by extension type. The
// zero value is empty and ready to use.
type Extensions struct {
	set keyedSet[ExtensionTypeID, Extension]
}

// NewExtensions returns a set holding exts. Later duplicates win.
func NewExtensions(exts ...Extension) *Extensions {
	e := &Extensions{}
	e.set.replaceAll(exts)
	return e
}

// Add inserts ext. Returns ErrExtensionAlreadyExists if its type is taken.
func (e *Extensions) Add(ext Extension) error {
	if !e.set.add(ext) {
		return fmt.Errorf("%w: %s", ErrExtensionAlreadyExists, ext.Type)
	}
	return nil
}

// Update replaces the extension of type ty with ext, which may carry a new
// type. Returns the previous extension.
func (e *Extensions) Update(ty ExtensionTypeID, ext Extension) (Extension, error) {
	old, found, conflict := e.set.update(ty, ext)
	switch {
	case !found:
		return Extension{}, fmt.Errorf("%w: %s", ErrExtensionDoesNotExist, ty)
	case conflict:
		return Extension{}, fmt.Errorf("%w: %s", ErrExtensionAlreadyExists, ext.Type)
	}
	return old, nil
}

// Remove deletes the extension of type ty and returns it.
func (e *Extensions) Remove(ty ExtensionTypeID) (Extension, error) {
	ext, ok := e.set.remove(ty)
	if !ok {
		return Extension{}, fmt.Errorf("%w: %s", ErrExtensionDoesNotExist, ty)
	}
	return ext, nil
}

// Push inserts or overwrites ext.
func (e *Extensions) Push(ext Extension) {
	e.set.upsert(ext)
}

// Get returns the extension of type ty.
func (e *Extensions) Get(ty ExtensionTypeID) (Extension, bool) {
	return e.set.get(ty)
}

// Has reports whether an extension of type ty exists.
func (e *Extensions) Has(ty ExtensionTypeID) bool {
	return e.set.has(ty)
}

// Len returns the number of extensions.
func (e *Extensions) Len() int {
	return e.set.len()
}

// ToSlice returns the extensions sorted by type.
func (e *Extensions) ToSlice() []Extension {
	return e.set.slice()
}

// ForEntityType returns the sorted extensions that apply to entityType.
func (e *Extensions) ForEntityType(entityType EntityTypeID) []Extension {
	all := e.ToSlice()
	out := all[:0]
	for _, ext := range all {
		if ext.AppliesTo(entityType) {
			out = append(out, ext)
		}
	}
	return out
}

// ReplaceAll replaces the contents with exts.
func (e *Extensions) ReplaceAll(exts ...Extension) {
	e.set.replaceAll(exts)
}

// Merge adds every extension whose type is absent and returns the added ones.
func (e *Extensions) Merge(exts ...Extension) []Extension {
	return e.set.addMissing(exts)
}

// Clone returns an independent copy.
func (e *Extensions) Clone() *Extensions {
	return NewExtensions(e.ToSlice()...)
}

// Equal compares the sorted snapshots by extension type.
func (e *Extensions) Equal(other *Extensions) bool {
	return slices.EqualFunc(e.ToSlice(), other.ToSlice(), Extension.Equal)
}

// Hash combines the hashes of the sorted snapshot.
func (e *Extensions) Hash() uint64 {
	d := xxhash.New()
	var buf [8]byte
	for _, ext := range e.ToSlice() {
		h := ext.Hash()
		for i := range buf {
			buf[i] = byte(h >> (8 * i))
		}
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

// MarshalJSON encodes the extensions as an array sorted by type.
func (e *Extensions) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.ToSlice())
}

// UnmarshalJSON replaces the contents with the decoded array.
func (e *Extensions) UnmarshalJSON(data []byte) error {
	var exts []Extension
	if err := json.Unmarshal(data, &exts); err != nil {
		return err
	}
	e.ReplaceAll(exts...)
	return nil
}
