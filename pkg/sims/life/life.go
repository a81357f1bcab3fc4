// Package life is a plain single-species Game of Life on a bounded board.
// Cells outside the board count as dead.
package life

import (
	"faction-ca/pkg/core"
)

// Life holds a rows x cols board of 0/1 cells.
type Life struct {
	rows, cols int
	cur        []uint8
	nxt        []uint8
}

// New returns an empty board.
func New(rows, cols int) *Life {
	cells := make([]uint8, rows*cols)
	return &Life{rows: rows, cols: cols, cur: cells, nxt: make([]uint8, len(cells))}
}

// Rows returns the board height.
func (l *Life) Rows() int { return l.rows }

// Cols returns the board width.
func (l *Life) Cols() int { return l.cols }

// Cells exposes the current board, row-major.
func (l *Life) Cells() []uint8 { return l.cur }

// Set marks a cell alive or dead.
func (l *Life) Set(row, col int, alive bool) {
	var v uint8
	if alive {
		v = 1
	}
	l.cur[row*l.cols+col] = v
}

// Alive reports whether a cell is alive.
func (l *Life) Alive(row, col int) bool { return l.cur[row*l.cols+col] == 1 }

// Reset randomizes the board at the given density.
func (l *Life) Reset(seed int64, density float64) {
	core.FillFactions(core.NewRNG(seed).Source(), l.cur, 2, density)
}

// Step advances the board by one generation.
func (l *Life) Step() {
	rows, cols := l.rows, l.cols
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			neighbors := 0
			for dr := -1; dr <= 1; dr++ {
				for dc := -1; dc <= 1; dc++ {
					if dr == 0 && dc == 0 {
						continue
					}
					nr, nc := r+dr, c+dc
					if nr < 0 || nr >= rows || nc < 0 || nc >= cols {
						continue
					}
					neighbors += int(l.cur[nr*cols+nc])
				}
			}
			idx := r*cols + c
			alive := l.cur[idx] == 1
			l.nxt[idx] = 0
			if (alive && (neighbors == 2 || neighbors == 3)) || (!alive && neighbors == 3) {
				l.nxt[idx] = 1
			}
		}
	}
	l.cur, l.nxt = l.nxt, l.cur
}
