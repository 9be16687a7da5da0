package layout

// rect holds optionally assigned rectangle fields.
type rect struct {
	x, y, width, height *int
}

func (r rect) with(lowerKey string, v int) (rect, bool) {
	switch lowerKey {
	case "x":
		r.x = &v
	case "y":
		r.y = &v
	case "width":
		r.width = &v
	case "height":
		r.height = &v
	default:
		return r, false
	}
	return r, true
}

// builder accumulates everything seen inside one orientation subtree.
// Pointer fields are never written through, so copying a builder is safe.
type builder struct {
	best     *Candidate
	override rect
	offsetX  *int
	offsetY  *int
	rotation *int
}

func (b builder) consider(c Candidate) builder {
	if b.best == nil || Better(c, *b.best) {
		b.best = &c
	}
	return b
}

// NormalizeRotation maps a quarter-turn count into [0, 4).
func NormalizeRotation(r int) int {
	return ((r % 4) + 4) % 4
}

// build finalizes the orientation against the shared base rectangle.
func (b builder) build(o Orientation, base rect) (Definition, error) {
	if b.best == nil {
		return Definition{}, ErrMissingImage
	}

	width := firstSet(b.override.width, base.width)
	height := firstSet(b.override.height, base.height)
	if width == nil || height == nil {
		return Definition{}, ErrMissingDimensions
	}
	w, h := *width, *height

	rotation := 0
	if b.rotation != nil {
		rotation = NormalizeRotation(*b.rotation)
	}
	if rotation%2 == 1 {
		w, h = h, w
	}

	x := valueOr(firstSet(b.override.x, base.x), 0)
	y := valueOr(firstSet(b.override.y, base.y), 0)
	x += valueOr(b.offsetX, 0)
	y += valueOr(b.offsetY, 0)

	return Definition{
		Orientation: o,
		ImageName:   b.best.Name,
		Display:     DisplayArea{X: x, Y: y, Width: w, Height: h},
	}, nil
}

func firstSet(values ...*int) *int {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func valueOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
