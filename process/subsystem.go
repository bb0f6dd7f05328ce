package process

// Subsystem is a target-bound service whose cached state must be emptied
// whenever the controller detaches. Reset is idempotent and never fails;
// subsystems re-prime lazily on next use.
type Subsystem interface {
	// Name identifies the subsystem in logs
	Name() string

	// Reset releases all target-bound state
	Reset()
}

// Registry is an ordered teardown list of subsystems. Reset order matters:
// later subsystems may depend on earlier ones still holding a valid process
// handle during their own cleanup, so ResetAll runs sequentially in
// registration order and must complete before the handle is closed.
type Registry struct {
	subs []Subsystem
}

// Register appends a subsystem to the teardown list
func (r *Registry) Register(s Subsystem) {
	r.subs = append(r.subs, s)
}

// ResetAll resets every registered subsystem in registration order
func (r *Registry) ResetAll() {
	for _, s := range r.subs {
		s.Reset()
	}
}

// Len returns the number of registered subsystems
func (r *Registry) Len() int {
	return len(r.subs)
}
