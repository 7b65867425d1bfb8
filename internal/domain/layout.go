package domain

type Room struct {
	ID     int64   `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Depth  float64 `json:"depth"`
	Height float64 `json:"height"`
}

type Path struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Width float64 `json:"width"`
	Depth float64 `json:"depth"`
}

type Bounds struct {
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

type Layout struct {
	Rooms  []Room `json:"rooms"`
	Paths  []Path `json:"paths"`
	Bounds Bounds `json:"bounds"`
}

// ComputeBounds returns the far corner covered by every room and path.
func ComputeBounds(rooms []Room, paths []Path) Bounds {
	var b Bounds
	for _, r := range rooms {
		b.MaxX = max(b.MaxX, r.X+r.Width)
		b.MaxY = max(b.MaxY, r.Y+r.Depth)
	}
	for _, p := range paths {
		b.MaxX = max(b.MaxX, p.X+p.Width)
		b.MaxY = max(b.MaxY, p.Y+p.Depth)
	}
	return b
}

func (l Layout) Room(id int64) (Room, bool) {
	for _, r := range l.Rooms {
		if r.ID == id {
			return r, true
		}
	}
	return Room{}, false
}
