package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/annel0/mmo-game/internal/block"
	"github.com/annel0/mmo-game/internal/voxel"
)

// WorldBounds is the subset of voxel.Store collision resolution needs:
// look up a chunk by position without pulling in generation/save
// concerns.
type WorldBounds interface {
	Get(pos voxel.ChunkPos) (*voxel.Chunk, bool)
}

// contact is one penetrating cell found during the narrow phase,
// expressed in world space.
type contact struct {
	depth  float64
	normal mgl64.Vec3
	point  mgl64.Vec3 // block center, world space — used to orient the normal
}

// ResolveAABB runs the broad+narrow phase collision pass for an
// entity AABB (world-space min/max) against the 27-chunk neighborhood
// around centerChunk, returning the displacement to add to the
// entity's position to push it out of every contact (spec §4.4 step
// 4).
func ResolveAABB(w WorldBounds, centerChunk voxel.ChunkPos, worldMin, worldMax mgl64.Vec3) mgl64.Vec3 {
	var contacts []contact

	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				cp := voxel.ChunkPos{X: centerChunk.X + dx, Y: centerChunk.Y + dy, Z: centerChunk.Z + dz}
				c, ok := w.Get(cp)
				if !ok {
					continue
				}
				chunkOrigin := mgl64.Vec3{
					float64(cp.X * voxel.ChunkSize),
					float64(cp.Y * voxel.ChunkSize),
					float64(cp.Z * voxel.ChunkSize),
				}
				// Separating-axis cull: skip chunks the AABB can't reach.
				if worldMax[0] < chunkOrigin[0] || worldMin[0] > chunkOrigin[0]+voxel.ChunkSize ||
					worldMax[1] < chunkOrigin[1] || worldMin[1] > chunkOrigin[1]+voxel.ChunkSize ||
					worldMax[2] < chunkOrigin[2] || worldMin[2] > chunkOrigin[2]+voxel.ChunkSize {
					continue
				}
				local := block.AABB{
					Min: [3]float64{worldMin[0] - chunkOrigin[0], worldMin[1] - chunkOrigin[1], worldMin[2] - chunkOrigin[2]},
					Max: [3]float64{worldMax[0] - chunkOrigin[0], worldMax[1] - chunkOrigin[1], worldMax[2] - chunkOrigin[2]},
				}
				for _, col := range c.IntersectionBox(local) {
					center := chunkOrigin.Add(mgl64.Vec3{
						float64(col.Local[0]) + 0.5,
						float64(col.Local[1]) + 0.5,
						float64(col.Local[2]) + 0.5,
					})
					n := mgl64.Vec3{float64(col.Normal[0]), float64(col.Normal[1]), float64(col.Normal[2])}
					contacts = append(contacts, contact{depth: col.Depth, normal: n, point: center})
				}
			}
		}
	}

	if len(contacts) == 0 {
		return mgl64.Vec3{}
	}

	entityCenter := worldMin.Add(worldMax).Mul(0.5)

	// Flip any normal whose sign disagrees with (entity center - block
	// center), then combine per axis as the average of the min and max
	// signed penetrations that touched that axis.
	var minSigned, maxSigned [3]float64
	var touched [3]bool
	for _, ct := range contacts {
		toEntity := entityCenter.Sub(ct.point)
		n := ct.normal
		for axis := 0; axis < 3; axis++ {
			if n[axis] == 0 {
				continue
			}
			signed := n[axis] * ct.depth
			if signed*toEntity[axis] < 0 {
				signed = -signed
			}
			if !touched[axis] {
				minSigned[axis] = signed
				maxSigned[axis] = signed
				touched[axis] = true
			} else {
				if signed < minSigned[axis] {
					minSigned[axis] = signed
				}
				if signed > maxSigned[axis] {
					maxSigned[axis] = signed
				}
			}
		}
	}

	var disp mgl64.Vec3
	for axis := 0; axis < 3; axis++ {
		if touched[axis] {
			disp[axis] = (minSigned[axis] + maxSigned[axis]) / 2
		}
	}
	return disp
}

// OBB is an oriented bounding box: a center, half-extents along its
// own axes, and an orientation.
type OBB struct {
	Center      mgl64.Vec3
	HalfExtents mgl64.Vec3
	Orientation mgl64.Quat
}

func (o OBB) axes() [3]mgl64.Vec3 {
	m := o.Orientation.Mat4()
	return [3]mgl64.Vec3{
		{m[0], m[1], m[2]},
		{m[4], m[5], m[6]},
		{m[8], m[9], m[10]},
	}
}

// OverlapOBB tests two oriented boxes via the separating-axis theorem
// over the six face normals and nine edge cross products (spec §4.4
// step 5).
func OverlapOBB(a, b OBB) bool {
	aAxes := a.axes()
	bAxes := b.axes()

	axesToTest := make([]mgl64.Vec3, 0, 15)
	axesToTest = append(axesToTest, aAxes[:]...)
	axesToTest = append(axesToTest, bAxes[:]...)
	for _, ai := range aAxes {
		for _, bi := range bAxes {
			cross := ai.Cross(bi)
			if cross.Len() > 1e-9 {
				axesToTest = append(axesToTest, cross.Normalize())
			}
		}
	}

	d := b.Center.Sub(a.Center)
	for _, axis := range axesToTest {
		if !overlapsOnAxis(a, aAxes, b, bAxes, d, axis) {
			return false
		}
	}
	return true
}

func overlapsOnAxis(a OBB, aAxes [3]mgl64.Vec3, b OBB, bAxes [3]mgl64.Vec3, d, axis mgl64.Vec3) bool {
	projA := math.Abs(a.HalfExtents[0]*aAxes[0].Dot(axis)) +
		math.Abs(a.HalfExtents[1]*aAxes[1].Dot(axis)) +
		math.Abs(a.HalfExtents[2]*aAxes[2].Dot(axis))
	projB := math.Abs(b.HalfExtents[0]*bAxes[0].Dot(axis)) +
		math.Abs(b.HalfExtents[1]*bAxes[1].Dot(axis)) +
		math.Abs(b.HalfExtents[2]*bAxes[2].Dot(axis))
	dist := math.Abs(d.Dot(axis))
	return dist <= projA+projB
}
