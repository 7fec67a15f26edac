// Package voxel implements the chunked world representation: chunks,
// their light fields, the chunk store and its per-observer spatial
// index, and location/coordinate math shared by the rest of the
// engine.
package voxel

import "math"

// ChunkSize is the number of blocks along each axis of a chunk.
const ChunkSize = 16

// ChunkPos is the integer coordinate of a chunk in the world's chunk
// grid (one unit == 16 blocks).
type ChunkPos struct {
	X, Y, Z int
}

func (p ChunkPos) Add(o ChunkPos) ChunkPos {
	return ChunkPos{p.X + o.X, p.Y + o.Y, p.Z + o.Z}
}

func (p ChunkPos) Sub(o ChunkPos) ChunkPos {
	return ChunkPos{p.X - o.X, p.Y - o.Y, p.Z - o.Z}
}

// ManhattanDistance is used by the server session's visibility radius.
func (p ChunkPos) ManhattanDistance(o ChunkPos) int {
	return absInt(p.X-o.X) + absInt(p.Y-o.Y) + absInt(p.Z-o.Z)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// RoughLocation is a location with an integer block offset, used for
// grid operations (block placement, chunk indexing).
type RoughLocation struct {
	Chunk ChunkPos
	Block [3]int
}

// Sanitize carries any block-component overflow into the chunk
// coordinate and wraps the block component into [0, ChunkSize).
// Idempotent: sanitizing an already-canonical location is a no-op.
func (l RoughLocation) Sanitize() RoughLocation {
	var out RoughLocation
	cx, bx := l.Chunk.X, l.Block[0]
	cy, by := l.Chunk.Y, l.Block[1]
	cz, bz := l.Chunk.Z, l.Block[2]
	out.Chunk.X = cx + floorDiv(bx, ChunkSize)
	out.Chunk.Y = cy + floorDiv(by, ChunkSize)
	out.Chunk.Z = cz + floorDiv(bz, ChunkSize)
	out.Block = [3]int{floorMod(bx, ChunkSize), floorMod(by, ChunkSize), floorMod(bz, ChunkSize)}
	return out
}

// Absolute returns a single fractional-free vector in world space.
func (l RoughLocation) Absolute() [3]int {
	s := l.Sanitize()
	return [3]int{
		s.Chunk.X*ChunkSize + s.Block[0],
		s.Chunk.Y*ChunkSize + s.Block[1],
		s.Chunk.Z*ChunkSize + s.Block[2],
	}
}

// Relative re-expresses the location with its chunk coordinate zeroed
// at ref — i.e. ref becomes the new coordinate-system origin.
func (l RoughLocation) Relative(ref ChunkPos) RoughLocation {
	return RoughLocation{Chunk: l.Chunk.Sub(ref), Block: l.Block}
}

func (l RoughLocation) Exact() ExactLocation {
	return ExactLocation{Chunk: l.Chunk, Block: [3]float64{float64(l.Block[0]), float64(l.Block[1]), float64(l.Block[2])}}
}

// ExactLocation is a location with a fractional block offset, used
// for entities and ray casts.
type ExactLocation struct {
	Chunk ChunkPos
	Block [3]float64
}

// Sanitize carries block overflow into the chunk coordinate and wraps
// the block component into [0, ChunkSize). Idempotent.
func (l ExactLocation) Sanitize() ExactLocation {
	var out ExactLocation
	for axis := 0; axis < 3; axis++ {
		c := chunkComponent(l.Chunk, axis)
		b := l.Block[axis]
		shift := math.Floor(b / ChunkSize)
		newC := c + int(shift)
		newB := b - shift*ChunkSize
		// Guard against float error landing exactly on ChunkSize.
		if newB >= ChunkSize {
			newB -= ChunkSize
			newC++
		}
		setChunkComponent(&out.Chunk, axis, newC)
		out.Block[axis] = newB
	}
	return out
}

func chunkComponent(p ChunkPos, axis int) int {
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

func setChunkComponent(p *ChunkPos, axis, v int) {
	switch axis {
	case 0:
		p.X = v
	case 1:
		p.Y = v
	default:
		p.Z = v
	}
}

// Absolute returns a single fractional vector in world space.
func (l ExactLocation) Absolute() [3]float64 {
	s := l.Sanitize()
	return [3]float64{
		float64(s.Chunk.X)*ChunkSize + s.Block[0],
		float64(s.Chunk.Y)*ChunkSize + s.Block[1],
		float64(s.Chunk.Z)*ChunkSize + s.Block[2],
	}
}

// Relative re-expresses the location with its chunk coordinate zeroed
// at ref.
func (l ExactLocation) Relative(ref ChunkPos) ExactLocation {
	return ExactLocation{Chunk: l.Chunk.Sub(ref), Block: l.Block}
}

// Rough floors the fractional block offset down to an integer cell.
func (l ExactLocation) Rough() RoughLocation {
	s := l.Sanitize()
	return RoughLocation{
		Chunk: s.Chunk,
		Block: [3]int{int(math.Floor(s.Block[0])), int(math.Floor(s.Block[1])), int(math.Floor(s.Block[2]))},
	}.Sanitize()
}

// FromAbsolute builds a canonical ExactLocation from a world-space
// vector.
func FromAbsolute(x, y, z float64) ExactLocation {
	return ExactLocation{Block: [3]float64{x, y, z}}.Sanitize()
}
