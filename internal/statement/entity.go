package statement

import (
	"fmt"
	"io"

	"github.com/casterly-dev/casterly/internal/model"
)

// ForEntity returns the row parser for a bank entity.
func ForEntity(e model.Entity) (RowParser, error) {
	switch e {
	case model.EntityLloyds, model.EntityHalifax:
		return LloydsParser{}, nil
	case model.EntityChase:
		return ChaseParser{}, nil
	}
	return nil, fmt.Errorf("no row parser for entity %q", e)
}

// ParseEntity parses a statement using the row parser registered for e.
func ParseEntity(r io.Reader, e model.Entity, opts Options) ([]Record, error) {
	p, err := ForEntity(e)
	if err != nil {
		return nil, err
	}
	return Parse(r, p, opts)
}
