// Package world loads start worlds and invasion plans from disk and
// generates random worlds.
package world

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"faction-ca/internal/core"
)

// ReadGrid parses the text grid format: a "rows cols" header followed by
// rows*cols whitespace-separated faction ids in row-major order. Every value
// must lie in [0, factions).
func ReadGrid(r io.Reader, factions int) (*core.Grid, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)

	next := func(what string) (int, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return 0, err
			}
			return 0, fmt.Errorf("unexpected end of input reading %s", what)
		}
		v, err := strconv.Atoi(sc.Text())
		if err != nil {
			return 0, fmt.Errorf("%s: %w", what, err)
		}
		return v, nil
	}

	rows, err := next("row count")
	if err != nil {
		return nil, err
	}
	cols, err := next("column count")
	if err != nil {
		return nil, err
	}
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", rows, cols)
	}

	g := core.NewGrid(rows, cols)
	cells := g.Cells()
	for i := range cells {
		v, err := next(fmt.Sprintf("cell (%d,%d)", i/cols, i%cols))
		if err != nil {
			return nil, err
		}
		if v < 0 || v >= factions {
			return nil, fmt.Errorf("cell (%d,%d): faction %d outside [0, %d)", i/cols, i%cols, v, factions)
		}
		cells[i] = core.Faction(v)
	}
	if sc.Scan() {
		return nil, fmt.Errorf("trailing data after %d cells: %q", len(cells), sc.Text())
	}
	return g, sc.Err()
}

// LoadGrid reads a text grid from path.
func LoadGrid(path string, factions int) (*core.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	g, err := ReadGrid(f, factions)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// WriteGrid writes g in the format ReadGrid accepts.
func WriteGrid(w io.Writer, g *core.Grid) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d\n", g.Rows, g.Cols)
	if err := writeRows(bw, g); err != nil {
		return err
	}
	return bw.Flush()
}

// SaveGrid writes g to path.
func SaveGrid(path string, g *core.Grid) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := WriteGrid(f, g); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// FormatRows renders the cells of g one line per row without a header.
func FormatRows(g *core.Grid) string {
	var b strings.Builder
	_ = writeRows(&b, g)
	return b.String()
}

func writeRows(w io.Writer, g *core.Grid) error {
	line := make([]byte, 0, g.Cols*4)
	for r := 0; r < g.Rows; r++ {
		line = line[:0]
		for c := 0; c < g.Cols; c++ {
			if c > 0 {
				line = append(line, ' ')
			}
			f, _ := g.Get(r, c)
			line = strconv.AppendInt(line, int64(f), 10)
		}
		line = append(line, '\n')
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	return nil
}

// ParseRows parses inline rows of whitespace-separated faction ids.
func ParseRows(rows []string, factions int) (*core.Grid, error) {
	cells := make([][]core.Faction, len(rows))
	for r, row := range rows {
		for c, field := range strings.Fields(row) {
			v, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", r, c, err)
			}
			if v < 0 || v >= factions {
				return nil, fmt.Errorf("row %d col %d: faction %d outside [0, %d)", r, c, v, factions)
			}
			cells[r] = append(cells[r], core.Faction(v))
		}
	}
	return core.GridFromRows(cells)
}
