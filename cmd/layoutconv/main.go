// layoutconv converts an ASCII obstacle map to a layouts.yaml entry.
//
// One line per grid row, one character per column:
//
//	. or space   empty
//	#            full
//	/            half_ne (solid toward the upper right)
//	\            half_nw
//	>            half_se
//	<            half_sw
//	0-5          numeric kind code
//
// Lines starting with ';' are comments.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/l1jgo/navgrid/internal/data"
	"github.com/l1jgo/navgrid/internal/obstacle"
	"gopkg.in/yaml.v3"
)

var glyphs = map[rune]obstacle.Kind{
	'.':  obstacle.Empty,
	' ':  obstacle.Empty,
	'#':  obstacle.Full,
	'/':  obstacle.HalfNE,
	'\\': obstacle.HalfNW,
	'>':  obstacle.HalfSE,
	'<':  obstacle.HalfSW,
}

type layoutDoc struct {
	Layouts []data.LayoutEntry `yaml:"layouts"`
}

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "Usage: layoutconv <map.txt> <output.yaml> [layout name]")
		os.Exit(1)
	}
	name := strings.TrimSuffix(filepath.Base(os.Args[1]), filepath.Ext(os.Args[1]))
	if len(os.Args) > 3 {
		name = os.Args[3]
	}

	in, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer in.Close()

	entry, rows, cols, err := convert(in, name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], err)
		os.Exit(1)
	}

	out, err := os.Create(os.Args[2])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer out.Close()

	if err := write(out, entry, rows, cols, filepath.Base(os.Args[1])); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote layout %q (%dx%d, %d stamps) to %s\n", name, rows, cols, len(entry.Stamps), os.Args[2])
}

// convert parses an ASCII map into a layout entry and reports the map size.
// Rows shorter than the widest row are padded with empty cells.
func convert(r io.Reader, name string) (data.LayoutEntry, int, int, error) {
	entry := data.LayoutEntry{Name: name}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	rows, cols := 0, 0
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.HasPrefix(line, ";") {
			continue
		}
		col := 0
		for _, ch := range line {
			kind, ok := glyphs[ch]
			if !ok {
				if ch < '0' || ch > '0'+rune(obstacle.Full) {
					return data.LayoutEntry{}, 0, 0, fmt.Errorf("row %d col %d: unknown glyph %q", rows, col, ch)
				}
				kind = obstacle.Kind(ch - '0')
			}
			if kind != obstacle.Empty {
				entry.Stamps = append(entry.Stamps, data.StampEntry{Row: rows, Col: col, Kind: kind.String()})
			}
			col++
		}
		cols = max(cols, col)
		rows++
	}
	if err := scanner.Err(); err != nil {
		return data.LayoutEntry{}, 0, 0, err
	}
	return entry, rows, cols, nil
}

func write(w io.Writer, entry data.LayoutEntry, rows, cols int, source string) error {
	fmt.Fprintf(w, "# Obstacle layout, auto-generated from %s (%dx%d, %d stamps)\n", source, rows, cols, len(entry.Stamps))
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(layoutDoc{Layouts: []data.LayoutEntry{entry}}); err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	return enc.Close()
}
