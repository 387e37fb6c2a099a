package grove

// TileAnimation cycles a tile ID through a frame sequence.
type TileAnimation struct {
	Frames    []uint16 `json:"frames"`
	FrameTime float64  `json:"frameTime"`

	elapsed float64
	current int
}

// CurrentFrame returns the tile ID of the active animation frame.
func (a *TileAnimation) CurrentFrame() uint16 {
	if len(a.Frames) == 0 {
		return 0
	}
	return a.Frames[a.current]
}

// Tilemap is the payload of a tile terrain node: a dense grid of tile IDs
// plus optional per-column surface heights used as heightfield collider
// geometry.
type Tilemap struct {
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	CellSize Vec2    `json:"cellSize"`
	Cells    []uint16 `json:"cells"`

	// Heights holds one surface height per column, in world units above the
	// tilemap origin.
	Heights []float64 `json:"heights,omitempty"`

	// Animations maps a tile ID to its frame cycle.
	Animations map[uint16]*TileAnimation `json:"animations,omitempty"`
}

// NewTilemap allocates an empty tilemap of the given dimensions.
func NewTilemap(width, height int, cellSize Vec2) *Tilemap {
	return &Tilemap{
		Width:    width,
		Height:   height,
		CellSize: cellSize,
		Cells:    make([]uint16, width*height),
	}
}

// TileAt returns the tile ID at the given cell, with animated IDs replaced by
// their current frame. Out-of-range cells return 0.
func (t *Tilemap) TileAt(x, y int) uint16 {
	if x < 0 || y < 0 || x >= t.Width || y >= t.Height {
		return 0
	}
	id := t.Cells[y*t.Width+x]
	if anim, ok := t.Animations[id]; ok {
		return anim.CurrentFrame()
	}
	return id
}

// SetTile writes the tile ID at the given cell. Out-of-range cells are
// ignored.
func (t *Tilemap) SetTile(x, y int, id uint16) {
	if x < 0 || y < 0 || x >= t.Width || y >= t.Height {
		return
	}
	t.Cells[y*t.Width+x] = id
}

// update advances tile animations.
func (t *Tilemap) update(dt float64) {
	for _, anim := range t.Animations {
		if len(anim.Frames) < 2 || anim.FrameTime <= 0 {
			continue
		}
		anim.elapsed += dt
		for anim.elapsed >= anim.FrameTime {
			anim.elapsed -= anim.FrameTime
			anim.current = (anim.current + 1) % len(anim.Frames)
		}
	}
}

// heightfieldPoints converts the per-column heights into a polyline in the
// tilemap's local frame, Y pointing down. Returns nil when no heights are
// authored.
func (t *Tilemap) heightfieldPoints() []Vec2 {
	if len(t.Heights) == 0 {
		return nil
	}
	points := make([]Vec2, len(t.Heights))
	for i, h := range t.Heights {
		points[i] = Vec2{float64(i) * t.CellSize.X, -h}
	}
	return points
}
