package worldgen

import (
	"math/rand"

	"github.com/annel0/mmo-game/internal/block"
	"github.com/annel0/mmo-game/internal/block/blocktypes"
	"github.com/annel0/mmo-game/internal/voxel"
)

// Generator produces chunk contents deterministically from a world
// seed and chunk position: every call to Generate(pos) on the same
// seed, against the same registry, fills identical blocks — no
// hidden time/PRNG-global state survives between calls (the local
// *rand.Rand is seeded per chunk, mirroring the teacher's per-chunk
// chunkSeed derivation in internal/world/generator.go).
type Generator struct {
	seed     int64
	registry *block.Registry
	sampler  *Sampler
	ids      blocktypes.IDs
	surface  int // y-level solidity crosses from solid to air on average
}

func NewGenerator(seed int64, registry *block.Registry, ids blocktypes.IDs) *Generator {
	return &Generator{
		seed:     seed,
		registry: registry,
		sampler:  NewSampler(seed),
		ids:      ids,
		surface:  64,
	}
}

// chunkSeed derives a deterministic per-chunk PRNG seed from the
// world seed and chunk coordinate, the same scheme the teacher uses
// (linear combination of coordinates), extended to three axes.
func (g *Generator) chunkSeed(pos voxel.ChunkPos) int64 {
	return g.seed + int64(pos.X)*31 + int64(pos.Y)*17 + int64(pos.Z)*131
}

// Generate fills a freshly allocated chunk's blocks in place.
func (g *Generator) Generate(c *voxel.Chunk) {
	pos := c.Position
	rng := rand.New(rand.NewSource(g.chunkSeed(pos)))

	baseX, baseY, baseZ := pos.X*voxel.ChunkSize, pos.Y*voxel.ChunkSize, pos.Z*voxel.ChunkSize

	for lz := 0; lz < voxel.ChunkSize; lz++ {
		for lx := 0; lx < voxel.ChunkSize; lx++ {
			gx, gz := baseX+lx, baseZ+lz
			for ly := 0; ly < voxel.ChunkSize; ly++ {
				gy := baseY + ly
				id := g.pickBlock(gx, gy, gz, rng)
				if id != g.ids.Air {
					c.SetBlock(lx, ly, lz, block.Block{Type: id})
				}
			}
		}
	}

	g.decorate(c, rng)
}

// pickBlock samples the four fields at an absolute coordinate and
// scores every registered type against them, biasing toward air
// above the generator's nominal surface height and solid ground below
// it (the teacher's equivalent is the height-banded switch in
// getBlocksForHeight; here the banding is folded into the solidity
// field itself via altitude bias).
func (g *Generator) pickBlock(x, y, z int, rng *rand.Rand) block.BlockID {
	f := g.sampler.At(x, y, z)

	altitudeBias := -float64(y-g.surface) * 0.01
	solidity := clamp11(f.solidity + altitudeBias)

	if solidity <= -0.6 {
		return g.ids.Air
	}

	best := g.ids.Air
	bestScore := 0.0
	for _, t := range g.registry.All() {
		if t.ID == g.ids.Air {
			continue
		}
		score := t.Gen.Score(solidity, f.humidity, f.temperature, f.richness)
		if score > bestScore {
			bestScore = score
			best = t.ID
		}
	}
	if bestScore <= 0 {
		return g.ids.Air
	}
	return best
}

// decorate places surface features (trees) on top of exposed grass,
// mirroring the teacher's placeTreeMetadata pass but driven by
// IsSurface instead of a fixed active-layer check.
func (g *Generator) decorate(c *voxel.Chunk, rng *rand.Rand) {
	const forestDensity = 0.04
	for lz := 0; lz < voxel.ChunkSize; lz++ {
		for lx := 0; lx < voxel.ChunkSize; lx++ {
			for ly := 0; ly < voxel.ChunkSize-4; ly++ {
				b := c.BlockAt(lx, ly, lz)
				if b.Type != g.ids.Grass {
					continue
				}
				if !c.IsSurface(lx, ly, lz) {
					continue
				}
				if rng.Float64() >= forestDensity {
					continue
				}
				g.placeTree(c, lx, ly+1, lz, rng)
			}
		}
	}
}

func (g *Generator) placeTree(c *voxel.Chunk, x, y, z int, rng *rand.Rand) {
	height := 3 + rng.Intn(3)
	for h := 0; h < height; h++ {
		ly := y + h
		if ly >= voxel.ChunkSize {
			return
		}
		if c.BlockAt(x, ly, z).Type != g.ids.Air {
			return
		}
		c.SetBlock(x, ly, z, block.Block{Type: g.ids.Wood})
	}
	canopyBase := y + height - 2
	for dz := -2; dz <= 2; dz++ {
		for dx := -2; dx <= 2; dx++ {
			if dx == 0 && dz == 0 {
				continue
			}
			lx, lz := x+dx, z+dz
			if lx < 0 || lx >= voxel.ChunkSize || lz < 0 || lz >= voxel.ChunkSize {
				continue
			}
			for dy := 0; dy <= 2; dy++ {
				ly := canopyBase + dy
				if ly >= voxel.ChunkSize {
					continue
				}
				if c.BlockAt(lx, ly, lz).Type == g.ids.Air {
					c.SetBlock(lx, ly, lz, block.Block{Type: g.ids.Leaves})
				}
			}
		}
	}
}
