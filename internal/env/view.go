package env

import "sort"

// View is one user's window onto an Environment. It satisfies dice.Env.
type View struct {
	env  *Environment
	user string
}

// User is the owner of the view.
func (v *View) User() string { return v.user }

func (v *View) Get(name string) (string, error) {
	return v.env.Get(v.user, name)
}

func (v *View) Set(name, value string) {
	v.env.Set(v.user, name, value)
}

// Owns reports whether the user has a binding of their own for name.
func (v *View) Owns(name string) bool {
	return v.env.Has(v.user, name)
}

// Unset removes the user's own binding; globals are untouched.
func (v *View) Unset(name string) bool {
	return v.env.Unset(v.user, name)
}

// Bindings is every name the user can read, globals included.
func (v *View) Bindings() map[string]string {
	return v.env.Bindings(v.user)
}

// Names lists Bindings keys in order.
func (v *View) Names() []string {
	b := v.Bindings()
	out := make([]string, 0, len(b))
	for k := range b {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
