package sqlite

// Schema DDL. One row per registered type, keyed by canonical type id; the
// record column holds the JSON encoding of the definition.
const (
	createTypeDefinitions = `CREATE TABLE type_definitions (
    type_id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    namespace TEXT NOT NULL,
    name TEXT NOT NULL,
    record TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createComponentRefs = `CREATE TABLE component_refs (
    type_id TEXT NOT NULL,
    component_id TEXT NOT NULL,
    PRIMARY KEY (type_id, component_id),
    FOREIGN KEY (type_id) REFERENCES type_definitions(type_id) ON DELETE CASCADE
);`
)

// Index DDL for common queries.
const (
	idxTypesKindNamespace = `CREATE INDEX idx_types_kind_namespace ON type_definitions(kind, namespace);`
	idxComponentRefs      = `CREATE INDEX idx_component_refs_component ON component_refs(component_id);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createTypeDefinitions,
	createComponentRefs,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxTypesKindNamespace,
	idxComponentRefs,
}
