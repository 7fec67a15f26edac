package physics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/annel0/mmo-game/internal/voxel"
)

// SampleGravity sums every gravity-emitting block's contribution
// within its radius of worldPos, scanning the entity's 3x3x3 chunk
// neighborhood (the same radius the narrow-phase collision pass
// uses, since a gravity emitter's radius is assumed never to exceed
// one chunk — spec §4.4 step 2 describes the field as "nearby
// blocks").
func SampleGravity(w WorldBounds, lookup func(id uint16) (radius, strength float64, ok bool), centerChunk voxel.ChunkPos, worldPos mgl64.Vec3) mgl64.Vec3 {
	var total mgl64.Vec3
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				cp := voxel.ChunkPos{X: centerChunk.X + dx, Y: centerChunk.Y + dy, Z: centerChunk.Z + dz}
				c, ok := w.Get(cp)
				if !ok {
					continue
				}
				origin := mgl64.Vec3{
					float64(cp.X * voxel.ChunkSize),
					float64(cp.Y * voxel.ChunkSize),
					float64(cp.Z * voxel.ChunkSize),
				}
				for lz := 0; lz < voxel.ChunkSize; lz++ {
					for ly := 0; ly < voxel.ChunkSize; ly++ {
						for lx := 0; lx < voxel.ChunkSize; lx++ {
							b := c.BlockAt(lx, ly, lz)
							radius, strength, ok := lookup(uint16(b.Type))
							if !ok || radius <= 0 {
								continue
							}
							center := origin.Add(mgl64.Vec3{float64(lx) + 0.5, float64(ly) + 0.5, float64(lz) + 0.5})
							toPoint := worldPos.Sub(center)
							d := toPoint.Len()
							if d >= radius || d == 0 {
								continue
							}
							total = total.Add(GravityContribution(strength, radius, d, toPoint.Mul(1/d)))
						}
					}
				}
			}
		}
	}
	return total
}
