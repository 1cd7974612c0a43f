package validator

// Registry maps builtin rule keys to Validator implementations. Registration
// order is preserved: rules are seeded and evaluated in the order their
// checkers were declared, so two installs always report issues identically.
type Registry struct {
	validators map[string]Validator
	keys       []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{validators: make(map[string]Validator)}
}

// Register adds a validator to the registry. Re-registering a key replaces
// the implementation but keeps the original position.
func (r *Registry) Register(v Validator) {
	if _, ok := r.validators[v.RuleKey()]; !ok {
		r.keys = append(r.keys, v.RuleKey())
	}
	r.validators[v.RuleKey()] = v
}

// Get returns the validator for a given rule key, or nil if not found.
func (r *Registry) Get(key string) Validator {
	return r.validators[key]
}

// All returns all registered validators in registration order.
func (r *Registry) All() []Validator {
	out := make([]Validator, 0, len(r.keys))
	for _, key := range r.keys {
		out = append(out, r.validators[key])
	}
	return out
}

// position returns each key's registration index for ordering rule rows.
func (r *Registry) position() map[string]int {
	pos := make(map[string]int, len(r.keys))
	for i, key := range r.keys {
		pos[key] = i
	}
	return pos
}
