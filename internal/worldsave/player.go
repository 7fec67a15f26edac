package worldsave

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// PlayerRecord is one player's persisted transform and inventory
// slot, the fields spec.md §4.3 names: chunk+block position,
// orientation quaternion, pitch, yaw, inventory slot.
type PlayerRecord struct {
	Chunk       [3]int
	Position    [3]float64
	Orientation [4]float64 // quaternion x,y,z,w
	Pitch       float64
	Yaw         float64
	Slot        int
}

func playerPath(root, name string) string {
	return root + string(os.PathSeparator) + "players" + string(os.PathSeparator) + name
}

// LoadPlayer reads root/players/<name>. A missing file is reported via
// the second return value, not an error.
func LoadPlayer(root, name string) (PlayerRecord, bool, error) {
	f, err := os.Open(playerPath(root, name))
	if os.IsNotExist(err) {
		return PlayerRecord{}, false, nil
	}
	if err != nil {
		return PlayerRecord{}, false, fmt.Errorf("worldsave: open player %q: %w", name, err)
	}
	defer f.Close()

	tokens, err := parseTokens(f)
	if err != nil {
		return PlayerRecord{}, false, fmt.Errorf("worldsave: parse player %q: %w", name, err)
	}

	var rec PlayerRecord
	if v, ok := tokens["chunk"]; ok {
		parts := splitTriple(v)
		for i := 0; i < 3 && i < len(parts); i++ {
			n, err := strconv.Atoi(parts[i])
			if err != nil {
				return PlayerRecord{}, false, fmt.Errorf("worldsave: player %q chunk[%d]: %w", name, i, err)
			}
			rec.Chunk[i] = n
		}
	}
	if v, ok := tokens["position"]; ok {
		parts := splitTriple(v)
		for i := 0; i < 3 && i < len(parts); i++ {
			f, err := strconv.ParseFloat(parts[i], 64)
			if err != nil {
				return PlayerRecord{}, false, fmt.Errorf("worldsave: player %q position[%d]: %w", name, i, err)
			}
			rec.Position[i] = f
		}
	}
	if v, ok := tokens["orientation"]; ok {
		parts := splitTriple(v)
		for i := 0; i < 4 && i < len(parts); i++ {
			f, err := strconv.ParseFloat(parts[i], 64)
			if err != nil {
				return PlayerRecord{}, false, fmt.Errorf("worldsave: player %q orientation[%d]: %w", name, i, err)
			}
			rec.Orientation[i] = f
		}
	}
	if v, ok := tokens["pitch"]; ok {
		rec.Pitch, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return PlayerRecord{}, false, fmt.Errorf("worldsave: player %q pitch: %w", name, err)
		}
	}
	if v, ok := tokens["yaw"]; ok {
		rec.Yaw, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return PlayerRecord{}, false, fmt.Errorf("worldsave: player %q yaw: %w", name, err)
		}
	}
	if v, ok := tokens["slot"]; ok {
		rec.Slot, err = strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return PlayerRecord{}, false, fmt.Errorf("worldsave: player %q slot: %w", name, err)
		}
	}
	return rec, true, nil
}

// SavePlayer writes rec to root/players/<name>, creating the players
// directory if needed.
func SavePlayer(root, name string, rec PlayerRecord) error {
	dir := root + string(os.PathSeparator) + "players"
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("worldsave: mkdir %s: %w", dir, err)
	}
	f, err := os.Create(playerPath(root, name))
	if err != nil {
		return fmt.Errorf("worldsave: create player %q: %w", name, err)
	}
	defer f.Close()

	fmt.Fprintf(f, "chunk = %d, %d, %d;\n", rec.Chunk[0], rec.Chunk[1], rec.Chunk[2])
	fmt.Fprintf(f, "position = %g, %g, %g;\n", rec.Position[0], rec.Position[1], rec.Position[2])
	fmt.Fprintf(f, "orientation = %g, %g, %g, %g;\n",
		rec.Orientation[0], rec.Orientation[1], rec.Orientation[2], rec.Orientation[3])
	fmt.Fprintf(f, "pitch = %g;\n", rec.Pitch)
	fmt.Fprintf(f, "yaw = %g;\n", rec.Yaw)
	fmt.Fprintf(f, "slot = %d;\n", rec.Slot)
	return nil
}

func splitTriple(v string) []string {
	parts := strings.Split(v, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
