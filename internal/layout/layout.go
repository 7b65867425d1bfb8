// Package layout holds the static mall floor plan. Rooms are not editable
// through the API; only their shop assignment is.
package layout

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"mall_admin/internal/domain"
)

//go:embed map-layout.json
var defaultLayout []byte

// Static serves a floor plan parsed once at startup.
type Static struct{ l domain.Layout }

// Load reads the layout at path, or the built-in plan when path is empty.
func Load(path string) (*Static, error) {
	raw := defaultLayout
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read layout: %w", err)
		}
		raw = b
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Static, error) {
	var l domain.Layout
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&l); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	if err := validate(l); err != nil {
		return nil, err
	}
	if l.Paths == nil {
		l.Paths = []domain.Path{}
	}
	l.Bounds = domain.ComputeBounds(l.Rooms, l.Paths)
	return &Static{l: l}, nil
}

func validate(l domain.Layout) error {
	seen := make(map[int64]bool, len(l.Rooms))
	for _, r := range l.Rooms {
		if r.ID <= 0 {
			return fmt.Errorf("room id %d must be positive: %w", r.ID, domain.ErrInvalid)
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate room id %d: %w", r.ID, domain.ErrInvalid)
		}
		seen[r.ID] = true
		if r.Width < 0 || r.Depth < 0 || r.Height < 0 {
			return fmt.Errorf("room %d has a negative size: %w", r.ID, domain.ErrInvalid)
		}
	}
	for i, p := range l.Paths {
		if p.Width < 0 || p.Depth < 0 {
			return fmt.Errorf("path %d has a negative size: %w", i, domain.ErrInvalid)
		}
	}
	return nil
}

// Layout returns a copy so callers cannot mutate the shared plan.
func (s *Static) Layout(context.Context) (domain.Layout, error) {
	out := s.l
	out.Rooms = slices.Clone(s.l.Rooms)
	out.Paths = slices.Clone(s.l.Paths)
	return out, nil
}
