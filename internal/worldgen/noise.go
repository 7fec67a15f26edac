// Package worldgen builds chunks deterministically from a world seed
// and chunk position, grounded on the teacher's internal/util/noise.go
// (perlin.Perlin wrapper) and internal/world/generator.go (biome
// selection over noise fields), generalized from the teacher's 2D
// height/biome pair to the spec's four-field solidity/humidity/
// temperature/richness sampling and scored against
// block.GenerationParams.
package worldgen

import (
	"math"

	"github.com/aquilax/go-perlin"
)

// fields are the four scalar noise channels a GenerationParams.Score call
// consumes, each in roughly [-1, 1].
type fields struct {
	solidity, humidity, temperature, richness float64
}

// Sampler produces deterministic noise fields for any world
// coordinate. Solidity comes from perlin.Perlin (continuous, smooth —
// suits a field that should vary gradually with depth/height).
// Humidity/temperature/richness come from a hand-rolled Worley
// (cellular) noise: no off-the-shelf Worley implementation exists
// among the example dependencies, and cellular noise is a small,
// self-contained algorithm (nearest-feature-point distance), unlike
// perlin which a maintained library already provides — see DESIGN.md.
type Sampler struct {
	seed        int64
	solidity    *perlin.Perlin
	solidityFq  float64
	worleyFq    float64
}

func NewSampler(seed int64) *Sampler {
	const (
		alpha = 2.0
		beta  = 2.0
		n     = int32(3)
	)
	return &Sampler{
		seed:       seed,
		solidity:   perlin.NewPerlin(alpha, beta, n, seed),
		solidityFq: 0.045,
		worleyFq:   0.01,
	}
}

// At samples all four fields at an absolute block coordinate.
func (s *Sampler) At(x, y, z int) fields {
	fx, fy, fz := float64(x)*s.solidityFq, float64(y)*s.solidityFq, float64(z)*s.solidityFq
	solidity := s.solidity.Noise3D(fx, fy, fz)

	wx, wz := float64(x)*s.worleyFq, float64(z)*s.worleyFq
	humidity := worley2D(wx, wz, s.seed+101)
	temperature := worley2D(wx, wz, s.seed+211) - float64(y)*0.0025 // colder with altitude
	richness := worley2D(wx, wz, s.seed+307)

	return fields{
		solidity:    clamp11(solidity),
		humidity:    clamp11(humidity),
		temperature: clamp11(temperature),
		richness:    clamp11(richness),
	}
}

func clamp11(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// worley2D returns F1 (distance to the nearest feature point, mapped
// into roughly [-1,1]) of a jittered 2D cell grid seeded by seed —
// standard cellular noise, used here for biome-scale fields that
// should look patchy rather than smooth.
func worley2D(x, z float64, seed int64) float64 {
	const cell = 1.0
	cx, cz := math.Floor(x/cell), math.Floor(z/cell)

	best := math.MaxFloat64
	for dz := -1; dz <= 1; dz++ {
		for dx := -1; dx <= 1; dx++ {
			gx, gz := cx+float64(dx), cz+float64(dz)
			fx, fz := featurePoint(int64(gx), int64(gz), seed)
			px, pz := gx+fx, gz+fz
			ddx, ddz := px-x/cell, pz-z/cell
			d := ddx*ddx + ddz*ddz
			if d < best {
				best = d
			}
		}
	}
	dist := math.Sqrt(best)
	// F1 typically falls in [0, ~1.5]; remap to [-1,1] centered at a
	// dist of 0.5 (the expected nearest-neighbor distance for a
	// Poisson-ish jittered grid).
	return clamp11((dist - 0.5) * 2)
}

// featurePoint returns a deterministic pseudo-random offset in [0,1)^2
// for the grid cell (gx,gz), hashed from seed.
func featurePoint(gx, gz, seed int64) (float64, float64) {
	h1 := hash64(int64(uint64(gx)*0x9E3779B97F4A7C15 + uint64(gz)*0xC2B2AE3D27D4EB4F + uint64(seed)))
	h2 := hash64(int64(uint64(h1) ^ 0xD6E8FEB86659FD93))
	return float64(h1&0xFFFFFF) / float64(1<<24), float64(h2&0xFFFFFF) / float64(1<<24)
}

func hash64(x int64) int64 {
	u := uint64(x)
	u ^= u >> 33
	u *= 0xff51afd7ed558ccd
	u ^= u >> 33
	u *= 0xc4ceb9fe1a85ec53
	u ^= u >> 33
	return int64(u)
}
