package session

import (
	"fmt"

	"github.com/iburimskiy/fractal-tree/internal/tree"
)

// LockSet records which parameters Randomize must leave alone.
type LockSet map[tree.Name]bool

// Lock pins or releases a parameter. Only lockable fields are accepted.
func (l LockSet) Lock(name tree.Name, locked bool) error {
	f, ok := tree.Lookup(name)
	if !ok {
		return &tree.ValidationError{Field: name, Reason: "unknown parameter"}
	}
	if !f.Lockable {
		return &tree.ValidationError{Field: name, Reason: "cannot be locked"}
	}
	if locked {
		l[name] = true
	} else {
		delete(l, name)
	}
	return nil
}

// Locked reports whether name is pinned.
func (l LockSet) Locked(name tree.Name) bool { return l[name] }

func (l LockSet) String() string {
	var names []tree.Name
	for _, f := range tree.Fields {
		if l[f.Name] {
			names = append(names, f.Name)
		}
	}
	return fmt.Sprint(names)
}
