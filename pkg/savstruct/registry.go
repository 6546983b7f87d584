package savstruct

import (
	"go/token"
	"log"
	"maps"
	"slices"
)

// predeclared lists Go's predeclared identifiers.
var predeclared = map[string]bool{
	"any": true, "bool": true, "byte": true, "comparable": true,
	"complex64": true, "complex128": true, "error": true,
	"float32": true, "float64": true, "int": true, "int8": true,
	"int16": true, "int32": true, "int64": true, "rune": true,
	"string": true, "uint": true, "uint8": true, "uint16": true,
	"uint32": true, "uint64": true, "uintptr": true,
	"true": true, "false": true, "iota": true, "nil": true,
	"append": true, "cap": true, "clear": true, "close": true,
	"complex": true, "copy": true, "delete": true, "imag": true,
	"len": true, "make": true, "max": true, "min": true, "new": true,
	"panic": true, "print": true, "println": true, "real": true,
	"recover": true,
}

// Registry is a namespace of columns for ad hoc scripting. Names that are
// Go keywords or predeclared identifiers are reserved and never bound, and
// a bound name is never rebound.
type Registry struct {
	columns map[string]*Column
	logger  *log.Logger
}

// NewRegistry returns an empty Registry that reports skipped names to
// logger, or to log.Default() if logger is nil.
func NewRegistry(logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{
		columns: make(map[string]*Column),
		logger:  logger,
	}
}

// Reserved reports whether name can never be bound.
func Reserved(name string) bool {
	return token.IsKeyword(name) || predeclared[name]
}

// Lookup returns the column bound to name.
func (r *Registry) Lookup(name string) (*Column, bool) {
	c, ok := r.columns[name]
	return c, ok
}

// Names returns the bound names in sorted order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.columns))
}

// Len returns the number of bound names.
func (r *Registry) Len() int {
	return len(r.columns)
}

func (r *Registry) bind(name string, c *Column) bool {
	if Reserved(name) {
		r.logger.Printf("warning: not attaching column %q: reserved name", name)
		return false
	}
	if _, taken := r.columns[name]; taken {
		r.logger.Printf("warning: not attaching column %q: name already bound", name)
		return false
	}
	r.columns[name] = c
	return true
}

// Attach binds the column under its name in reg. It returns false, leaving
// reg unchanged, if the name is reserved or already bound.
func (c *Column) Attach(reg *Registry) bool {
	return reg.bind(c.name, c)
}
