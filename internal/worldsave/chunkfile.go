package worldsave

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/annel0/mmo-game/internal/block"
	"github.com/annel0/mmo-game/internal/voxel"
)

const blockRecordSize = 4 // sizeof(Block) as serialized: one little-endian uint32

// chunkPath returns chunks/x/y/z.gz under root, one directory level
// per axis as spec.md §4.3 names it.
func chunkPath(root string, pos voxel.ChunkPos) string {
	return filepath.Join(root, "chunks", strconv.Itoa(pos.X), strconv.Itoa(pos.Y), strconv.Itoa(pos.Z)+".gz")
}

// HasChunk reports whether a saved chunk file exists for pos.
func HasChunk(root string, pos voxel.ChunkPos) bool {
	_, err := os.Stat(chunkPath(root, pos))
	return err == nil
}

// LoadChunk reads and decompresses the saved chunk at pos into c,
// overwriting its current blocks. Returns false if no file exists.
func LoadChunk(root string, pos voxel.ChunkPos, c *voxel.Chunk) (bool, error) {
	f, err := os.Open(chunkPath(root, pos))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("worldsave: open chunk %v: %w", pos, err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return false, fmt.Errorf("worldsave: gzip reader for chunk %v: %w", pos, err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return false, fmt.Errorf("worldsave: read chunk %v: %w", pos, err)
	}
	want := voxel.ChunkSize * voxel.ChunkSize * voxel.ChunkSize * blockRecordSize
	if len(raw) != want {
		return false, fmt.Errorf("worldsave: chunk %v has %d bytes, want %d", pos, len(raw), want)
	}

	i := 0
	for z := 0; z < voxel.ChunkSize; z++ {
		for y := 0; y < voxel.ChunkSize; y++ {
			for x := 0; x < voxel.ChunkSize; x++ {
				v := binary.LittleEndian.Uint32(raw[i*blockRecordSize:])
				c.SetBlock(x, y, z, block.Decode(v))
				i++
			}
		}
	}
	return true, nil
}

// SaveChunk serializes every cell of c as a little-endian block
// record, gzips the result, and writes it to chunks/x/y/z.gz under
// root, creating directories as needed.
func SaveChunk(root string, c *voxel.Chunk) error {
	pos := c.Position
	path := chunkPath(root, pos)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("worldsave: mkdir for chunk %v: %w", pos, err)
	}

	var raw bytes.Buffer
	raw.Grow(voxel.ChunkSize * voxel.ChunkSize * voxel.ChunkSize * blockRecordSize)
	var buf [4]byte
	for z := 0; z < voxel.ChunkSize; z++ {
		for y := 0; y < voxel.ChunkSize; y++ {
			for x := 0; x < voxel.ChunkSize; x++ {
				binary.LittleEndian.PutUint32(buf[:], c.BlockAt(x, y, z).Encode())
				raw.Write(buf[:])
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("worldsave: create chunk %v: %w", pos, err)
	}
	defer f.Close()

	zw := gzip.NewWriter(f)
	if _, err := zw.Write(raw.Bytes()); err != nil {
		zw.Close()
		return fmt.Errorf("worldsave: write chunk %v: %w", pos, err)
	}
	return zw.Close()
}
