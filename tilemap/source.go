package tilemap

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/lafriks/go-tiled"
)

// DirSource loads Tiled (.tmx) maps from a content directory.
// Asset names are paths relative to Root without the extension.
type DirSource struct {
	Root string
}

// NewDirSource creates a source rooted at the given directory
func NewDirSource(root string) *DirSource {
	return &DirSource{Root: root}
}

// Load reads <Root>/<name>.tmx
func (s *DirSource) Load(name string) (*Map, error) {
	path := filepath.Join(s.Root, filepath.FromSlash(name))
	if !strings.HasSuffix(path, ".tmx") {
		path += ".tmx"
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MapError{Asset: name, Err: ErrAssetNotFound}
		}
		return nil, &MapError{Asset: name, Err: err}
	}

	tm, err := tiled.LoadFile(path)
	if err != nil {
		return nil, &MapError{Asset: name, Err: fmt.Errorf("failed to parse tmx: %w", err)}
	}
	return fromTiled(name, tm), nil
}

// fromTiled converts a go-tiled map into our layer model.
// Tile layers are stored row-major (right-down render order).
func fromTiled(name string, tm *tiled.Map) *Map {
	m := New(name, tm.Width, tm.Height, tm.TileWidth, tm.TileHeight)
	for _, tl := range tm.Layers {
		layer := &Layer{Name: tl.Name, Tiles: make([]Tile, 0, len(tl.Tiles))}
		for i, lt := range tl.Tiles {
			tile := Tile{Col: i % tm.Width, Row: i / tm.Width, Blank: lt == nil || lt.IsNil()}
			if !tile.Blank {
				tile.GID = lt.ID
				if lt.Tileset != nil {
					tile.GID += lt.Tileset.FirstGID
				}
			}
			layer.Tiles = append(layer.Tiles, tile)
		}
		m.Layers = append(m.Layers, layer)
	}
	return m
}

// MemorySource serves maps registered in memory
type MemorySource struct {
	mu   sync.RWMutex
	maps map[string]*Map
}

// NewMemorySource creates a source containing the given maps, keyed by Asset
func NewMemorySource(maps ...*Map) *MemorySource {
	s := &MemorySource{maps: make(map[string]*Map, len(maps))}
	for _, m := range maps {
		s.maps[m.Asset] = m
	}
	return s
}

// Add registers a map under its Asset name
func (s *MemorySource) Add(m *Map) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maps[m.Asset] = m
}

// Load returns the map registered under name
func (s *MemorySource) Load(name string) (*Map, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.maps[name]
	if !ok {
		return nil, &MapError{Asset: name, Err: ErrAssetNotFound}
	}
	return m, nil
}
