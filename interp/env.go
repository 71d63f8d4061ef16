package interp

import "github.com/metaphox/geel/ast"

// Environment is the single global namespace of a program run. Bindings map
// a name to a value node; the order of first definition is kept.
//
// An Environment is owned by one Interpreter and is not safe for concurrent use.
type Environment struct {
	values map[string]ast.Expression
	order  []string
}

// NewEnvironment returns an empty environment.
func NewEnvironment() *Environment {
	return &Environment{values: make(map[string]ast.Expression)}
}

// Get returns the value bound to name.
func (e *Environment) Get(name string) (ast.Expression, bool) {
	v, ok := e.values[name]
	return v, ok
}

// Set creates or overwrites the binding of name. Overwriting keeps the
// name's original position in Names.
func (e *Environment) Set(name string, v ast.Expression) {
	if _, ok := e.values[name]; !ok {
		e.order = append(e.order, name)
	}
	e.values[name] = v
}

// Names returns the bound names in order of first definition.
func (e *Environment) Names() []string {
	return append([]string(nil), e.order...)
}

// Len reports the number of bindings.
func (e *Environment) Len() int {
	return len(e.order)
}
