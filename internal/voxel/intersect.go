package voxel

import "github.com/annel0/mmo-game/internal/block"

// RayHit describes the nearest block a ray struck within a chunk.
type RayHit struct {
	Block  block.Block
	Local  [3]int
	Dist   float64
	Normal [3]int
}

// Intersection casts a ray (given in the chunk's own local space,
// i.e. origin already offset by -chunkPos*16) against every occupied
// cell and returns the nearest hit. Feasible by brute force because a
// chunk only has 4096 cells and callers cull by chunk bounding box
// first.
func (c *Chunk) Intersection(origin, dir [3]float64, maxDist float64) (RayHit, bool) {
	best := RayHit{Dist: maxDist + 1}
	found := false
	for z := 0; z < ChunkSize; z++ {
		for y := 0; y < ChunkSize; y++ {
			for x := 0; x < ChunkSize; x++ {
				b := c.BlockAt(x, y, z)
				t, ok := c.registry.Get(b.Type)
				if !ok || t.Shape == nil || !t.Collision && !t.Visible {
					continue
				}
				cellOrigin := [3]float64{float64(x), float64(y), float64(z)}
				for _, box := range OrientedBoxes(t.Shape, b.Orientation, cellOrigin) {
					hit, dist, n := block.RayAABB(origin, dir, box, maxDist)
					if hit && dist < best.Dist {
						best = RayHit{Block: b, Local: [3]int{x, y, z}, Dist: dist, Normal: n}
						found = true
					}
				}
			}
		}
	}
	return best, found
}

// BoxCollision describes one penetrating cell found by Intersection
// (box variant).
type BoxCollision struct {
	Local  [3]int
	Depth  float64
	Normal [3]int
}

// IntersectionBox tests an axis-aligned box (in the chunk's local
// space) against every collidable cell, appending a BoxCollision for
// each overlap.
func (c *Chunk) IntersectionBox(box block.AABB) []BoxCollision {
	var out []BoxCollision
	// Narrow the scan to the cells the box can actually reach.
	minX, maxX := clampCell(box.Min[0]), clampCell(box.Max[0])
	minY, maxY := clampCell(box.Min[1]), clampCell(box.Max[1])
	minZ, maxZ := clampCell(box.Min[2]), clampCell(box.Max[2])
	for z := minZ; z <= maxZ; z++ {
		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				b := c.BlockAt(x, y, z)
				t, ok := c.registry.Get(b.Type)
				if !ok || !t.CollideBlock || t.Shape == nil {
					continue
				}
				cellOrigin := [3]float64{float64(x), float64(y), float64(z)}
				for _, cellBox := range OrientedBoxes(t.Shape, b.Orientation, cellOrigin) {
					if hit, depth, n := block.BoxOverlap(box, cellBox); hit {
						out = append(out, BoxCollision{Local: [3]int{x, y, z}, Depth: depth, Normal: n})
					}
				}
			}
		}
	}
	return out
}

func clampCell(v float64) int {
	i := int(v)
	if v < 0 {
		i--
	}
	if i < 0 {
		return 0
	}
	if i >= ChunkSize {
		return ChunkSize - 1
	}
	return i
}
