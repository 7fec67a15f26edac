package block

import "math"

// AABB is an axis-aligned box in local block space [0,1]^3 before
// orientation is applied.
type AABB struct {
	Min, Max [3]float64
}

// Shape is the closed set of collidable/renderable block geometries:
// {Null, Cuboid, Stair, Slab}. Each variant answers the two questions
// the rest of the engine needs — does a ray hit it, does a moving box
// overlap it — and whether a given world-space face of the unit cube
// is fully covered (used to cull hidden mesh faces via Obstructed).
type Shape interface {
	// Boxes returns the shape's geometry as local-space boxes, before
	// orientation is applied.
	Boxes() []AABB
	// FaceFilled reports whether, once oriented, the shape fully
	// covers the named face of its unit cube cell.
	FaceFilled(o Orientation, f Face) bool
}

// ShapeNull is the empty shape used by air: no boxes, no filled
// faces.
type ShapeNull struct{}

func (ShapeNull) Boxes() []AABB                        { return nil }
func (ShapeNull) FaceFilled(Orientation, Face) bool     { return false }

// ShapeCuboid is a full unit cube — rotation never changes its
// geometry or which faces it fills.
type ShapeCuboid struct{}

func (ShapeCuboid) Boxes() []AABB {
	return []AABB{{Min: [3]float64{0, 0, 0}, Max: [3]float64{1, 1, 1}}}
}

func (ShapeCuboid) FaceFilled(Orientation, Face) bool { return true }

// ShapeSlab occupies the bottom half of the cell (Face = Up puts the
// slab on the floor, the canonical orientation); turning/facing can
// flip which half is solid.
type ShapeSlab struct{}

func (ShapeSlab) Boxes() []AABB {
	return []AABB{{Min: [3]float64{0, 0, 0}, Max: [3]float64{1, 0.5, 1}}}
}

func (ShapeSlab) FaceFilled(o Orientation, f Face) bool {
	// Only the face the half-box touches fully is filled; for the
	// canonical (unrotated) slab that's Down, plus the four sides are
	// NOT fully filled (half height), so only Down counts.
	local := localFace(o, f)
	return local == FaceDown
}

// ShapeStair is a slab plus a quarter-footprint riser along its back
// edge.
type ShapeStair struct{}

func (ShapeStair) Boxes() []AABB {
	return []AABB{
		{Min: [3]float64{0, 0, 0}, Max: [3]float64{1, 0.5, 1}},
		{Min: [3]float64{0, 0.5, 0.5}, Max: [3]float64{1, 1, 1}},
	}
}

func (ShapeStair) FaceFilled(o Orientation, f Face) bool {
	// The slab fills the bottom face; slab plus riser together cover
	// the whole +Z (Front) face.
	local := localFace(o, f)
	return local == FaceDown || local == FaceFront
}

// localFace maps a world-space face back to the shape's local
// (pre-orientation) frame by applying the orientation's inverse
// rotation (the transpose of its matrix, since it's orthogonal).
func localFace(o Orientation, f Face) Face {
	m := o.Matrix()
	nx, ny, nz := f.Normal()
	n := [3]int{nx, ny, nz}
	// Inverse rotation: transpose.
	var inv [3]int
	for i := 0; i < 3; i++ {
		inv[i] = m[0][i]*n[0] + m[1][i]*n[1] + m[2][i]*n[2]
	}
	return faceFromNormal(inv)
}

func faceFromNormal(n [3]int) Face {
	switch n {
	case [3]int{0, 1, 0}:
		return FaceUp
	case [3]int{0, -1, 0}:
		return FaceDown
	case [3]int{1, 0, 0}:
		return FaceRight
	case [3]int{-1, 0, 0}:
		return FaceLeft
	case [3]int{0, 0, 1}:
		return FaceFront
	case [3]int{0, 0, -1}:
		return FaceBack
	default:
		return FaceUp
	}
}

// OrientedBoxes returns a shape's boxes transformed by its
// orientation and translated into the block's world-space cell at
// origin (the cell's minimum corner).
func OrientedBoxes(s Shape, o Orientation, origin [3]float64) []AABB {
	m := o.Matrix()
	boxes := s.Boxes()
	out := make([]AABB, 0, len(boxes))
	for _, b := range boxes {
		// Rotate about the cell center (0.5,0.5,0.5) then translate.
		corners := [8][3]float64{
			{b.Min[0], b.Min[1], b.Min[2]}, {b.Max[0], b.Min[1], b.Min[2]},
			{b.Min[0], b.Max[1], b.Min[2]}, {b.Max[0], b.Max[1], b.Min[2]},
			{b.Min[0], b.Min[1], b.Max[2]}, {b.Max[0], b.Min[1], b.Max[2]},
			{b.Min[0], b.Max[1], b.Max[2]}, {b.Max[0], b.Max[1], b.Max[2]},
		}
		min := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
		max := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
		for _, c := range corners {
			centered := [3]float64{c[0] - 0.5, c[1] - 0.5, c[2] - 0.5}
			r := m.ApplyF(centered)
			for i := 0; i < 3; i++ {
				p := r[i] + 0.5 + origin[i]
				if p < min[i] {
					min[i] = p
				}
				if p > max[i] {
					max[i] = p
				}
			}
		}
		out = append(out, AABB{Min: min, Max: max})
	}
	return out
}

// RayAABB intersects a ray (origin+t*dir) against box, returning the
// entry distance and hit face normal if it hits within [0, maxDist].
// Uses the standard slab method; a ray tangent to a face returns a
// hit at that face's distance, never a negative distance.
func RayAABB(origin, dir [3]float64, box AABB, maxDist float64) (hit bool, dist float64, normal [3]int) {
	tmin, tmax := 0.0, maxDist
	var enterAxis int
	var enterSign float64
	for i := 0; i < 3; i++ {
		if dir[i] == 0 {
			if origin[i] < box.Min[i] || origin[i] > box.Max[i] {
				return false, 0, [3]int{}
			}
			continue
		}
		inv := 1 / dir[i]
		t1 := (box.Min[i] - origin[i]) * inv
		t2 := (box.Max[i] - origin[i]) * inv
		sign := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1.0
		}
		if t1 > tmin {
			tmin = t1
			enterAxis = i
			enterSign = sign
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return false, 0, [3]int{}
		}
	}
	if tmin < 0 {
		tmin = 0
	}
	n := [3]int{}
	switch enterAxis {
	case 0:
		n = [3]int{int(enterSign), 0, 0}
	case 1:
		n = [3]int{0, int(enterSign), 0}
	case 2:
		n = [3]int{0, 0, int(enterSign)}
	}
	return true, tmin, n
}

// BoxOverlap returns whether two AABBs overlap and, if so, the
// minimum-translation depth and axis normal needed to separate a
// (moving) box from b along the axis of least penetration.
func BoxOverlap(a, b AABB) (hit bool, depth float64, normal [3]int) {
	var overlap [3]float64
	for i := 0; i < 3; i++ {
		o := math.Min(a.Max[i], b.Max[i]) - math.Max(a.Min[i], b.Min[i])
		if o <= 0 {
			return false, 0, [3]int{}
		}
		overlap[i] = o
	}
	axis := 0
	for i := 1; i < 3; i++ {
		if overlap[i] < overlap[axis] {
			axis = i
		}
	}
	depth = overlap[axis]
	centerA := (a.Min[axis] + a.Max[axis]) / 2
	centerB := (b.Min[axis] + b.Max[axis]) / 2
	sign := 1
	if centerA < centerB {
		sign = -1
	}
	n := [3]int{}
	n[axis] = sign
	return true, depth, n
}
