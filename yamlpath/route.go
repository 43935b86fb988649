// SPDX-License-Identifier: MIT

package yamlpath

// Component is one step of a Route: either a mapping key or a sequence
// index. isKey says which of key/index is meaningful.
type Component struct {
	key    string
	index  int
	isKey  bool
}

// Key builds a mapping-key route component.
func Key(name string) Component { return Component{key: name, isKey: true} }

// Index builds a sequence-index route component.
func Index(i int) Component { return Component{index: i, isKey: false} }

func (c Component) String() string {
	if c.isKey {
		return c.key
	}
	return "[" + itoa(c.index) + "]"
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// Route is an ordered sequence of Components identifying a feature
// within a Document. An empty (nil) Route denotes the whole document.
// Routes are built with chained calls: Root().Child("jobs").Child("build").
type Route []Component

// Root returns the empty route.
func Root() Route { return nil }

// Child returns a new route with an additional key component appended.
func (r Route) Child(key string) Route {
	out := make(Route, len(r)+1)
	copy(out, r)
	out[len(r)] = Key(key)
	return out
}

// At returns a new route with an additional sequence-index component
// appended.
func (r Route) At(index int) Route {
	out := make(Route, len(r)+1)
	copy(out, r)
	out[len(r)] = Index(index)
	return out
}

// String renders a route as a dotted/bracketed path, for error messages.
func (r Route) String() string {
	if len(r) == 0 {
		return "."
	}
	s := ""
	for i, c := range r {
		if c.isKey {
			if i > 0 {
				s += "."
			}
			s += c.key
		} else {
			s += c.String()
		}
	}
	return s
}
