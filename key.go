package treedi

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/cespare/xxhash/v2"
)

type (
	// Identifier distinguishes several bindings of the same contract. It is the hash of a name.
	Identifier uint64

	// BindingKey is the (contract, identifier) pair bindings are indexed by.
	BindingKey struct {
		Type reflect.Type
		ID   Identifier
	}

	// nameTable maps identifiers back to their names, only kept by trees running in debug mode.
	nameTable struct {
		mu    sync.RWMutex
		names map[Identifier]string
	}
)

// NoID is the default identifier, used by bindings and requests without a name.
const NoID Identifier = 0

// ID hashes a name into an Identifier. The empty name is NoID.
// A name hashing to the reserved NoID value is rejected with a panic.
func ID(name string) Identifier {
	if name == "" {
		return NoID
	}
	id := Identifier(xxhash.Sum64String(name))
	if id == NoID {
		panic(fmt.Sprintf("reserved identifier: name %q hashes to the default identifier", name))
	}
	return id
}

func Key(typ reflect.Type, id Identifier) BindingKey {
	return BindingKey{Type: typ, ID: id}
}

func KeyOf[T any](name string) BindingKey {
	return BindingKey{Type: TypeOf[T](), ID: ID(name)}
}

func (id Identifier) String() string {
	if id == NoID {
		return ""
	}
	return fmt.Sprintf("#%016x", uint64(id))
}

func (k BindingKey) String() string {
	return k.format(nil)
}

func (k BindingKey) format(names *nameTable) string {
	if k.ID == NoID {
		return typeName(k.Type)
	}
	return typeName(k.Type) + ":" + names.lookup(k.ID)
}

func newNameTable() *nameTable {
	return &nameTable{names: make(map[Identifier]string)}
}

// remember records the name of an identifier, it is a no-op on a nil table.
func (t *nameTable) remember(id Identifier, name string) {
	if t == nil || id == NoID || name == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.names[id] = name
}

func (t *nameTable) lookup(id Identifier) string {
	if t != nil {
		t.mu.RLock()
		name, found := t.names[id]
		t.mu.RUnlock()
		if found {
			return name
		}
	}
	return id.String()
}
