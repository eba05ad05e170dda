package object

// Environment holds the bindings of one scope frame and a link to the
// enclosing frame. Frames are shared: nested blocks and every closure
// declared inside them hold the same *Environment.
type Environment struct {
	store map[string]Object
	outer *Environment
}

// NewEnvironment creates a new, top-level environment.
func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]Object)}
}

// NewEnclosedEnvironment creates a new environment that is enclosed by an outer one.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

// Define binds name in this frame, overwriting any previous binding here.
func (e *Environment) Define(name string, val Object) {
	e.store[name] = val
}

// Get looks name up from this frame outward.
func (e *Environment) Get(name string) (Object, bool) {
	for env := e; env != nil; env = env.outer {
		if obj, ok := env.store[name]; ok {
			return obj, true
		}
	}
	return nil, false
}

// Ancestor walks exactly depth enclosing links. It returns nil when the
// chain is shorter than depth.
func (e *Environment) Ancestor(depth int) *Environment {
	env := e
	for i := 0; i < depth && env != nil; i++ {
		env = env.outer
	}
	return env
}

// GetAt looks name up in the frame depth links out, and only there.
func (e *Environment) GetAt(depth int, name string) (Object, bool) {
	env := e.Ancestor(depth)
	if env == nil {
		return nil, false
	}
	obj, ok := env.store[name]
	return obj, ok
}

// Assign updates the nearest frame that already binds name. It never
// creates a binding and reports false when no frame has one.
func (e *Environment) Assign(name string, val Object) bool {
	for env := e; env != nil; env = env.outer {
		if _, ok := env.store[name]; ok {
			env.store[name] = val
			return true
		}
	}
	return false
}
