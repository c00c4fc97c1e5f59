package game

// Pocket is a fixed capture circle. Pockets are immutable for the match.
type Pocket struct {
	ID       int     `json:"id"`
	Position Vec2    `json:"position"`
	Radius   float64 `json:"radius"`
}

// Table is the playing field: an axis-aligned rectangle from (0,0) to
// (Width,Height) with six pockets — four corners plus the midpoints of
// the two long rails.
type Table struct {
	Width   float64  `json:"width"`
	Height  float64  `json:"height"`
	Pockets []Pocket `json:"pockets"`
}

// NewTable builds the standard six-pocket table for the given config.
func NewTable(cfg *SimConfig) *Table {
	w, h, pr := cfg.TableWidth, cfg.TableHeight, cfg.PocketRadius

	pockets := []Pocket{
		{ID: 0, Position: NewVec2(0, 0), Radius: pr},
		{ID: 1, Position: NewVec2(w/2, 0), Radius: pr},
		{ID: 2, Position: NewVec2(w, 0), Radius: pr},
		{ID: 3, Position: NewVec2(0, h), Radius: pr},
		{ID: 4, Position: NewVec2(w/2, h), Radius: pr},
		{ID: 5, Position: NewVec2(w, h), Radius: pr},
	}

	return &Table{Width: w, Height: h, Pockets: pockets}
}

// PocketAt returns the pocket whose capture radius contains p, or nil.
func (t *Table) PocketAt(p Vec2) *Pocket {
	for i := range t.Pockets {
		if t.Pockets[i].Position.DistanceTo(p) < t.Pockets[i].Radius {
			return &t.Pockets[i]
		}
	}
	return nil
}

// NearestPocket returns the pocket closest to p and its distance.
func (t *Table) NearestPocket(p Vec2) (*Pocket, float64) {
	var best *Pocket
	bestDist := 0.0
	for i := range t.Pockets {
		d := t.Pockets[i].Position.DistanceTo(p)
		if best == nil || d < bestDist {
			best = &t.Pockets[i]
			bestDist = d
		}
	}
	return best, bestDist
}

// RailDistance returns the distance from p to the nearest rail. Negative
// means p is outside the table.
func (t *Table) RailDistance(p Vec2) float64 {
	d := p.X
	if t.Width-p.X < d {
		d = t.Width - p.X
	}
	if p.Y < d {
		d = p.Y
	}
	if t.Height-p.Y < d {
		d = t.Height - p.Y
	}
	return d
}
