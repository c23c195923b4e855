// Package tilemap provides the tile grid a level is built from: map
// dimensions, named layers and the solid/blank state of every tile.
package tilemap

import (
	"errors"
	"fmt"
)

// ForegroundLayer is the layer under which solid blocks are stored
const ForegroundLayer = "Foreground"

var (
	// ErrLayerNotFound is returned when a map has no layer with the requested name
	ErrLayerNotFound = errors.New("layer not found")

	// ErrAssetNotFound is returned when a source has no map with the requested name
	ErrAssetNotFound = errors.New("map asset not found")
)

// MapError is a content error raised while loading or inspecting a map
type MapError struct {
	Asset string
	Layer string
	Err   error
}

func (e *MapError) Error() string {
	if e.Layer != "" {
		return fmt.Sprintf("map %q layer %q: %v", e.Asset, e.Layer, e.Err)
	}
	return fmt.Sprintf("map %q: %v", e.Asset, e.Err)
}

func (e *MapError) Unwrap() error {
	return e.Err
}

// Tile is a single cell of a tile layer
type Tile struct {
	// Grid coordinates
	Col, Row int

	// Blank tiles have no graphic and are never solid
	Blank bool

	// GID is the global tile id from the source map (0 for blank tiles)
	GID uint32
}

// Layer is a named, row-major list of tiles
type Layer struct {
	Name  string
	Tiles []Tile
}

// Map is a tile grid with integer tile sizes
type Map struct {
	// Asset is the name the map was loaded under
	Asset string

	// Width and Height are measured in tiles
	Width, Height int

	// TileWidth and TileHeight are measured in pixels
	TileWidth, TileHeight int

	Layers []*Layer
}

// New creates an empty map
func New(asset string, width, height, tileWidth, tileHeight int) *Map {
	return &Map{
		Asset:      asset,
		Width:      width,
		Height:     height,
		TileWidth:  tileWidth,
		TileHeight: tileHeight,
	}
}

// WidthInPixels returns the world width of the map
func (m *Map) WidthInPixels() int {
	return m.Width * m.TileWidth
}

// HeightInPixels returns the world height of the map
func (m *Map) HeightInPixels() int {
	return m.Height * m.TileHeight
}

// Layer looks up a layer by name
func (m *Map) Layer(name string) (*Layer, error) {
	for _, layer := range m.Layers {
		if layer.Name == name {
			return layer, nil
		}
	}
	return nil, &MapError{Asset: m.Asset, Layer: name, Err: ErrLayerNotFound}
}

// AddLayer appends a layer built from a row-major solid mask.
// The mask must hold Width*Height entries.
func (m *Map) AddLayer(name string, solid []bool) (*Layer, error) {
	if len(solid) != m.Width*m.Height {
		return nil, &MapError{
			Asset: m.Asset,
			Layer: name,
			Err:   fmt.Errorf("expected %d tiles, got %d", m.Width*m.Height, len(solid)),
		}
	}

	layer := &Layer{Name: name, Tiles: make([]Tile, len(solid))}
	for i, s := range solid {
		tile := Tile{Col: i % m.Width, Row: i / m.Width, Blank: !s}
		if s {
			tile.GID = 1
		}
		layer.Tiles[i] = tile
	}
	m.Layers = append(m.Layers, layer)
	return layer, nil
}

// ParseRows builds a solid mask from rows of text where '#' marks a solid tile.
// Every row must have the same length.
func ParseRows(rows ...string) (width, height int, solid []bool, err error) {
	if len(rows) == 0 {
		return 0, 0, nil, errors.New("no rows")
	}
	width = len(rows[0])
	height = len(rows)
	solid = make([]bool, 0, width*height)
	for i, row := range rows {
		if len(row) != width {
			return 0, 0, nil, fmt.Errorf("row %d has %d columns, want %d", i, len(row), width)
		}
		for _, c := range row {
			solid = append(solid, c == '#')
		}
	}
	return width, height, solid, nil
}

// Source provides maps by asset name
type Source interface {
	Load(name string) (*Map, error)
}
