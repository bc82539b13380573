package model

import (
	"fmt"
	"strings"
)

// Entity identifies the bank whose statement format an account uses.
type Entity string

const (
	EntityLloyds  Entity = "lloyds"
	EntityHalifax Entity = "halifax"
	EntityChase   Entity = "chase"
)

var entities = []Entity{EntityLloyds, EntityHalifax, EntityChase}

// Entities returns every supported entity, in display order.
func Entities() []Entity {
	out := make([]Entity, len(entities))
	copy(out, entities)
	return out
}

// ParseEntity resolves a case-insensitive entity name.
func ParseEntity(s string) (Entity, error) {
	key := Entity(strings.ToLower(strings.TrimSpace(s)))
	for _, e := range entities {
		if e == key {
			return e, nil
		}
	}
	return "", fmt.Errorf("unknown entity %q", s)
}

// Valid reports whether e is one of the supported entities.
func (e Entity) Valid() bool {
	_, err := ParseEntity(string(e))
	return err == nil
}

func (e Entity) String() string { return string(e) }
