package solver

import (
	"errors"
	"sort"
	"strings"
)

// Engines is the registry of configured capabilities, addressed by name.
type Engines struct {
	def    string
	byName map[string]Capability
}

func NewEngines(defaultName string, caps ...Capability) *Engines {
	e := &Engines{def: strings.ToLower(strings.TrimSpace(defaultName)), byName: make(map[string]Capability, len(caps))}
	for _, c := range caps {
		if c == nil {
			continue
		}
		e.byName[strings.ToLower(c.Name())] = c
	}
	return e
}

// Get returns the named engine; an empty name selects the default.
func (e *Engines) Get(name string) (Capability, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = e.def
	}
	if c, ok := e.byName[name]; ok {
		return c, nil
	}
	return nil, errors.New("unknown engine " + `"` + name + `"; use one of: ` + strings.Join(e.Names(), ", "))
}

// Names lists the registered engine names in order.
func (e *Engines) Names() []string {
	out := make([]string, 0, len(e.byName))
	for n := range e.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
