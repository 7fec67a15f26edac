package blocktypes

import "github.com/annel0/mmo-game/internal/block"

// waterFlow spreads a liquid into an adjacent air cell within the
// same chunk once per tick — the supplemented per-block tick behavior
// feature, kept to a single-chunk neighbor scan since block.API has no
// cross-chunk reach.
type waterFlow struct {
	kind block.BlockID
}

func (w waterFlow) TickUpdate(api block.API, x, y, z int) {
	offsets := [6][3]int{
		{1, 0, 0}, {-1, 0, 0},
		{0, 1, 0}, {0, -1, 0},
		{0, 0, 1}, {0, 0, -1},
	}
	for _, o := range offsets {
		nx, ny, nz := x+o[0], y+o[1], z+o[2]
		if nx < 0 || ny < 0 || nz < 0 || nx >= 16 || ny >= 16 || nz >= 16 {
			continue
		}
		if o[1] == 1 {
			continue // liquids don't flow upward
		}
		if api.GetBlock(nx, ny, nz).Type != block.AirBlockID {
			continue
		}
		api.SetBlock(nx, ny, nz, block.Block{Type: w.kind})
		return
	}
}

// InstallTickable registers the scripted per-tick behaviors for the
// built-in kinds that need one. Call after Install.
func InstallTickable(ids IDs) *block.TickRegistry {
	r := block.NewTickRegistry()
	r.Register(ids.Water, waterFlow{kind: ids.Water})
	r.Register(ids.DeepWater, waterFlow{kind: ids.DeepWater})
	return r
}
