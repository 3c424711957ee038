package data

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/l1jgo/navgrid/internal/grid"
	"github.com/l1jgo/navgrid/internal/obstacle"
	"gopkg.in/yaml.v3"
)

// ErrUnknownKind is returned for an obstacle kind that is neither a known
// name nor a known numeric code.
var ErrUnknownKind = errors.New("unknown obstacle kind")

// StampEntry is one authored obstacle cell.
type StampEntry struct {
	Row  int    `yaml:"row"`
	Col  int    `yaml:"col"`
	Kind string `yaml:"kind"` // "full", "half_ne", ...; empty means full
}

// LayoutEntry is a named obstacle layout. TileFile, when set, is a CSV grid
// (relative to the YAML file) stamped before the explicit stamps.
type LayoutEntry struct {
	Name     string       `yaml:"name"`
	TileFile string       `yaml:"tile_file,omitempty"`
	Stamps   []StampEntry `yaml:"stamps"`
}

type layoutFile struct {
	Layouts []LayoutEntry `yaml:"layouts"`
}

// LayoutTable holds every layout of one layouts.yaml, resolved to stamps.
type LayoutTable struct {
	layouts map[string][]obstacle.Stamp
}

// LoadLayoutTable loads layouts.yaml and any tile files it references.
func LoadLayoutTable(path string) (*LayoutTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout list %s: %w", path, err)
	}
	var file layoutFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse layout list: %w", err)
	}

	t := &LayoutTable{layouts: make(map[string][]obstacle.Stamp, len(file.Layouts))}
	for _, l := range file.Layouts {
		if l.Name == "" {
			return nil, fmt.Errorf("layout list %s: layout without name", path)
		}
		var stamps []obstacle.Stamp
		if l.TileFile != "" {
			tiles, err := loadTileFile(filepath.Join(filepath.Dir(path), l.TileFile))
			if err != nil {
				return nil, fmt.Errorf("layout %s: %w", l.Name, err)
			}
			stamps = append(stamps, tiles...)
		}
		for _, s := range l.Stamps {
			kind, err := ParseKind(s.Kind)
			if err != nil {
				return nil, fmt.Errorf("layout %s (%d,%d): %w", l.Name, s.Row, s.Col, err)
			}
			stamps = append(stamps, obstacle.Stamp{Cell: grid.Cell{Row: s.Row, Col: s.Col}, Kind: kind})
		}
		t.layouts[l.Name] = stamps
	}
	return t, nil
}

// ParseKind accepts a kind name or its numeric code. Blank means Full.
func ParseKind(s string) (obstacle.Kind, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return obstacle.Full, nil
	}
	if k, ok := obstacle.ParseKind(s); ok {
		return k, nil
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= int(obstacle.Full) {
		return obstacle.Kind(n), nil
	}
	return obstacle.Empty, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func loadTileFile(path string) ([]obstacle.Stamp, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseTiles(f)
}

// ParseTiles reads a CSV tile grid: one line per row, one kind per column.
// Blank lines and lines starting with '#' are skipped. Only non-empty cells
// become stamps.
func ParseTiles(r io.Reader) ([]obstacle.Stamp, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var stamps []obstacle.Stamp
	row := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		for col, tok := range strings.Split(line, ",") {
			tok = strings.TrimSpace(tok)
			if tok == "" || tok == "0" {
				continue
			}
			kind, err := ParseKind(tok)
			if err != nil {
				return nil, fmt.Errorf("tile row %d col %d: %w", row, col, err)
			}
			if kind != obstacle.Empty {
				stamps = append(stamps, obstacle.Stamp{Cell: grid.Cell{Row: row, Col: col}, Kind: kind})
			}
		}
		row++
	}
	return stamps, scanner.Err()
}

// Get returns the stamps of a layout.
func (t *LayoutTable) Get(name string) ([]obstacle.Stamp, bool) {
	s, ok := t.layouts[name]
	return s, ok
}

// Names returns the layout names in sorted order.
func (t *LayoutTable) Names() []string {
	names := make([]string, 0, len(t.layouts))
	for n := range t.layouts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of layouts loaded.
func (t *LayoutTable) Count() int {
	return len(t.layouts)
}
