// Package definitions reads type definitions from YAML files and registers
// them into a [typesystem.TypeSystem].
package definitions

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/lattice/pkg/types"
	"github.com/mesh-intelligence/lattice/pkg/typesystem"
)

// Document is the top-level structure of a definitions file.
//
// Example:
//
//	components:
//	  - namespace: core
//	    name: Named
//	    properties:
//	      - name: name
//	        data_type: string
//	entity_types:
//	  - namespace: demo
//	    name: Widget
//	    components: [c__core__Named]
type Document struct {
	Components    []ComponentDef    `yaml:"components"`
	EntityTypes   []EntityTypeDef   `yaml:"entity_types"`
	RelationTypes []RelationTypeDef `yaml:"relation_types"`
	FlowTypes     []FlowTypeDef     `yaml:"flow_types"`
}

// PropertyDef declares a property type.
type PropertyDef struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// DataType is one of null, bool, number, string, array, object, any.
	// Empty means any.
	DataType string `yaml:"data_type"`

	SocketType string `yaml:"socket_type"`
	Mutability string `yaml:"mutability"`
	Default    any    `yaml:"default"`
}

// ExtensionDef declares an extension. Type is a canonical extension type id
// such as "x__core__Label".
type ExtensionDef struct {
	Type        string `yaml:"type"`
	EntityType  string `yaml:"entity_type"`
	Description string `yaml:"description"`
	Value       any    `yaml:"value"`
}

// ComponentDef declares a component.
type ComponentDef struct {
	Namespace   string         `yaml:"namespace"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Properties  []PropertyDef  `yaml:"properties"`
	Extensions  []ExtensionDef `yaml:"extensions"`
}

// EntityTypeDef declares an entity type. Components are canonical component
// type ids.
type EntityTypeDef struct {
	Namespace   string         `yaml:"namespace"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Components  []string       `yaml:"components"`
	Properties  []PropertyDef  `yaml:"properties"`
	Extensions  []ExtensionDef `yaml:"extensions"`
}

// RelationTypeDef declares a relation type. Outbound and Inbound accept
// "c__ns__Name", "e__ns__Name", "c__*" or "e__*".
type RelationTypeDef struct {
	Namespace   string         `yaml:"namespace"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Outbound    string         `yaml:"outbound"`
	Inbound     string         `yaml:"inbound"`
	Components  []string       `yaml:"components"`
	Properties  []PropertyDef  `yaml:"properties"`
	Extensions  []ExtensionDef `yaml:"extensions"`
}

// FlowTypeDef declares a flow type. Wrapper is the canonical entity type id
// of the wrapper entity.
type FlowTypeDef struct {
	Namespace   string         `yaml:"namespace"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Wrapper     string         `yaml:"wrapper"`
	Variables   []PropertyDef  `yaml:"variables"`
	Extensions  []ExtensionDef `yaml:"extensions"`
}

// LoadFile reads and parses a definitions file from disk.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("definitions: open %q: %w", path, err)
	}
	defer f.Close()

	doc, err := LoadReader(f)
	if err != nil {
		return nil, fmt.Errorf("definitions: parse %q: %w", path, err)
	}
	return doc, nil
}

// LoadReader parses a definitions document from r. Unknown keys are rejected.
func LoadReader(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("definitions: decode yaml: %w", err)
	}
	return &doc, nil
}

// Result counts what Apply registered.
type Result struct {
	Components    int
	EntityTypes   int
	RelationTypes int
	FlowTypes     int
	// Merged is the number of property types copied from components into
	// entity and relation types.
	Merged int
}

// Apply registers every definition of doc into ts, components first, and then
// merges the properties of the newly registered components into the types
// that reference them. Definitions that fail to convert or register are
// skipped and reported together; the rest are still applied.
func Apply(ts *typesystem.TypeSystem, doc *Document) (Result, error) {
	var res Result
	var errs []error
	var registered []*types.Component

	for _, def := range doc.Components {
		c, err := def.convert()
		if err == nil {
			c, err = ts.Components().Register(c)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("component %s::%s: %w", def.Namespace, def.Name, err))
			continue
		}
		registered = append(registered, c)
		res.Components++
	}
	for _, def := range doc.EntityTypes {
		et, err := def.convert()
		if err == nil {
			_, err = ts.EntityTypes().Register(et)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("entity type %s::%s: %w", def.Namespace, def.Name, err))
			continue
		}
		res.EntityTypes++
	}
	for _, def := range doc.RelationTypes {
		rt, err := def.convert()
		if err == nil {
			_, err = ts.RelationTypes().Register(rt)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("relation type %s::%s: %w", def.Namespace, def.Name, err))
			continue
		}
		res.RelationTypes++
	}
	for _, def := range doc.FlowTypes {
		ft, err := def.convert()
		if err == nil {
			_, err = ts.FlowTypes().Register(ft)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("flow type %s::%s: %w", def.Namespace, def.Name, err))
			continue
		}
		res.FlowTypes++
	}

	res.Merged = ts.MergeComponentProperties(registered...)
	if len(errs) > 0 {
		return res, fmt.Errorf("definitions: %w", errors.Join(errs...))
	}
	return res, nil
}
