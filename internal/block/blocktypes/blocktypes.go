// Package blocktypes registers the built-in block kinds, grounded on
// the teacher's internal/world/block/implementations package: one
// file per kind there, one Install call per kind here, assigning
// shapes/luminosity/generation windows instead of per-kind structs.
package blocktypes

import "github.com/annel0/mmo-game/internal/block"

// Names of the built-in kinds, exported so the generator and tests
// can reference them without a registry lookup round-trip at
// startup.
const (
	Air       = "air"
	Stone     = "stone"
	Dirt      = "dirt"
	Grass     = "grass"
	Sand      = "sand"
	Water     = "water"
	DeepWater = "deep_water"
	Glowstone = "glowstone"
	Leaves    = "leaves"
	Wood      = "wood"
)

// IDs is populated by Install and used by the generator to avoid a
// name lookup per cell during chunk generation.
type IDs struct {
	Air, Stone, Dirt, Grass, Sand, Water, DeepWater, Glowstone, Leaves, Wood block.BlockID
}

// Install registers the built-in kinds into r and returns their
// assigned ids. Must run before r.Freeze().
func Install(r *block.Registry) IDs {
	var ids IDs

	ids.Stone = r.Register(Stone, func(id block.BlockID) block.Type {
		return block.Type{
			Shape: block.ShapeCuboid{}, Visible: true, BlockLight: true,
			Collision: true, CollideBlock: true,
			Gen: block.GenerationParams{
				SolidityMin: 0.55, SolidityMid: 0.85, SolidityMax: 1.01,
				HumidityMin: -1.01, HumidityMid: 0, HumidityMax: 1.01,
				TemperatureMin: -1.01, TemperatureMid: 0, TemperatureMax: 1.01,
				RichnessMin: -1.01, RichnessMid: 0, RichnessMax: 1.01,
				Commonness: 1.0,
			},
		}
	})

	ids.Dirt = r.Register(Dirt, func(id block.BlockID) block.Type {
		return block.Type{
			Shape: block.ShapeCuboid{}, Visible: true, BlockLight: true,
			Collision: true, CollideBlock: true,
			Gen: block.GenerationParams{
				SolidityMin: 0.3, SolidityMid: 0.5, SolidityMax: 0.8,
				HumidityMin: -0.4, HumidityMid: 0.2, HumidityMax: 1.01,
				TemperatureMin: -1.01, TemperatureMid: 0, TemperatureMax: 1.01,
				RichnessMin: -1.01, RichnessMid: 0, RichnessMax: 1.01,
				Commonness: 0.9,
			},
		}
	})

	ids.Grass = r.Register(Grass, func(id block.BlockID) block.Type {
		return block.Type{
			Shape: block.ShapeCuboid{}, Visible: true, BlockLight: true,
			Collision: true, CollideBlock: true,
			Gen: block.GenerationParams{
				SolidityMin: 0.3, SolidityMid: 0.5, SolidityMax: 0.78,
				HumidityMin: 0.0, HumidityMid: 0.4, HumidityMax: 1.01,
				TemperatureMin: -0.5, TemperatureMid: 0.2, TemperatureMax: 1.01,
				RichnessMin: -1.01, RichnessMid: 0, RichnessMax: 1.01,
				Commonness: 1.1,
			},
		}
	})

	ids.Sand = r.Register(Sand, func(id block.BlockID) block.Type {
		return block.Type{
			Shape: block.ShapeCuboid{}, Visible: true, BlockLight: true,
			Collision: true, CollideBlock: true,
			Gen: block.GenerationParams{
				SolidityMin: 0.25, SolidityMid: 0.45, SolidityMax: 0.7,
				HumidityMin: -1.01, HumidityMid: -0.5, HumidityMax: 0.1,
				TemperatureMin: 0.1, TemperatureMid: 0.7, TemperatureMax: 1.01,
				RichnessMin: -1.01, RichnessMid: 0, RichnessMax: 1.01,
				Commonness: 0.8,
			},
		}
	})

	ids.Water = r.Register(Water, func(id block.BlockID) block.Type {
		return block.Type{
			Shape: block.ShapeCuboid{}, Visible: true, BlockLight: false,
			Collision: false, CollideBlock: false,
			Gen: block.GenerationParams{
				SolidityMin: -1.01, SolidityMid: 0.1, SolidityMax: 0.32,
				HumidityMin: -1.01, HumidityMid: 1, HumidityMax: 1.01,
				TemperatureMin: -1.01, TemperatureMid: 0, TemperatureMax: 1.01,
				RichnessMin: -1.01, RichnessMid: 0, RichnessMax: 1.01,
				Commonness: 1.0,
			},
		}
	})

	ids.DeepWater = r.Register(DeepWater, func(id block.BlockID) block.Type {
		return block.Type{
			Shape: block.ShapeCuboid{}, Visible: true, BlockLight: false,
			Collision: false, CollideBlock: false,
			Gen: block.GenerationParams{
				SolidityMin: -1.01, SolidityMid: -0.5, SolidityMax: 0.15,
				HumidityMin: -1.01, HumidityMid: 1, HumidityMax: 1.01,
				TemperatureMin: -1.01, TemperatureMid: 0, TemperatureMax: 1.01,
				RichnessMin: -1.01, RichnessMid: 0, RichnessMax: 1.01,
				Commonness: 1.0,
			},
		}
	})

	ids.Glowstone = r.Register(Glowstone, func(id block.BlockID) block.Type {
		return block.Type{
			Shape: block.ShapeCuboid{}, Visible: true, BlockLight: true,
			Collision: true, CollideBlock: true, Luminosity: 14,
			Gen: block.GenerationParams{
				SolidityMin: 0.8, SolidityMid: 0.95, SolidityMax: 1.01,
				HumidityMin: -1.01, HumidityMid: 0, HumidityMax: 1.01,
				TemperatureMin: -1.01, TemperatureMid: 0, TemperatureMax: 1.01,
				RichnessMin: 0.6, RichnessMid: 0.9, RichnessMax: 1.01,
				Commonness: 0.05,
			},
		}
	})

	ids.Leaves = r.Register(Leaves, func(id block.BlockID) block.Type {
		return block.Type{
			Shape: block.ShapeCuboid{}, Visible: true, BlockLight: false,
			Collision: true, CollideBlock: true,
		}
	})

	ids.Wood = r.Register(Wood, func(id block.BlockID) block.Type {
		return block.Type{
			Shape: block.ShapeCuboid{}, Visible: true, BlockLight: true,
			Collision: true, CollideBlock: true,
		}
	})

	ids.Air = block.AirBlockID
	return ids
}
