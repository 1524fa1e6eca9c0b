// Package tspcmd carries the static classification tables for the
// 2600-series TSP command namespace: which member names are callable
// functions, readable and writable properties, read-only constants, command
// groups, and element-addressable attribute lists.
//
// The tables are configuration data, not computed; they follow the command
// reference of the 2600-series firmware. Default returns the packaged
// tables; New builds a table set from caller-supplied name lists for other
// firmware revisions.
package tspcmd

// Table is one immutable set of classification tables. It implements the
// command-set lookup interface consumed by the tsp package.
type Table struct {
	functions  map[string]struct{}
	properties map[string]struct{}
	constants  map[string]struct{}
	groups     map[string]struct{}
	indexed    map[string]struct{}
}

// New builds a table set from name lists. The functions, properties,
// constants, and groups lists hold bare member names and must be disjoint;
// indexed holds full dotted paths, with bracket indices omitted, of
// element-addressable attribute lists.
func New(functions, properties, constants, groups, indexed []string) *Table {
	return &Table{
		functions:  toSet(functions),
		properties: toSet(properties),
		constants:  toSet(constants),
		groups:     toSet(groups),
		indexed:    toSet(indexed),
	}
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// IsFunction reports whether name is a remote callable.
func (t *Table) IsFunction(name string) bool {
	_, ok := t.functions[name]
	return ok
}

// IsProperty reports whether name is a readable and writable attribute.
func (t *Table) IsProperty(name string) bool {
	_, ok := t.properties[name]
	return ok
}

// IsConstant reports whether name is a read-only attribute.
func (t *Table) IsConstant(name string) bool {
	_, ok := t.constants[name]
	return ok
}

// IsGroup reports whether name is a command group.
func (t *Table) IsGroup(name string) bool {
	_, ok := t.groups[name]
	return ok
}

// IsIndexed reports whether the index-stripped dotted path addresses an
// element-addressable attribute list.
func (t *Table) IsIndexed(path string) bool {
	_, ok := t.indexed[path]
	return ok
}

var defaultTable = New(defaultFunctions, defaultProperties, defaultConstants, defaultGroups, defaultIndexed)

// Default returns the packaged 2600-series tables.
func Default() *Table { return defaultTable }
