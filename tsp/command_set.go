package tsp

// CommandSet classifies remote member names. The classification data is
// static configuration shipped per firmware family (see the tspcmd package
// for the 2600-series tables); the driver consumes it read-only.
//
// A member name belongs to at most one of the function, property, constant,
// and group sets. A name outside all four sets is an unresolved member.
type CommandSet interface {
	// IsFunction reports whether name is a remote callable.
	IsFunction(name string) bool
	// IsProperty reports whether name is a readable and writable attribute.
	IsProperty(name string) bool
	// IsConstant reports whether name is a read-only attribute.
	IsConstant(name string) bool
	// IsGroup reports whether name is a command group, a pure sub-namespace
	// with no leaf value.
	IsGroup(name string) bool
	// IsIndexed reports whether the full dotted path, with all bracketed
	// indices stripped, addresses an element-addressable attribute list
	// rather than a scalar.
	IsIndexed(path string) bool
}
