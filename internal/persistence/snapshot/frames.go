// Package snapshot exports generations of a world as they are computed.
package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"faction-ca/internal/core"
)

// Frame is one exported generation.
type Frame struct {
	Generation int    `json:"generation"`
	Rows       int    `json:"rows"`
	Cols       int    `json:"cols"`
	Live       int    `json:"live"`
	Cells      []byte `json:"cells"`
}

// NewFrame copies g into a Frame.
func NewFrame(g *core.Grid, generation int) Frame {
	src := g.Cells()
	cells := make([]byte, len(src))
	live := 0
	for i, f := range src {
		cells[i] = byte(f)
		if f != core.Neutral {
			live++
		}
	}
	return Frame{Generation: generation, Rows: g.Rows, Cols: g.Cols, Live: live, Cells: cells}
}

// Grid rebuilds the grid carried by the frame.
func (f Frame) Grid() (*core.Grid, error) {
	if f.Rows <= 0 || f.Cols <= 0 || len(f.Cells) != f.Rows*f.Cols {
		return nil, fmt.Errorf("frame %d: %d cells for %dx%d", f.Generation, len(f.Cells), f.Rows, f.Cols)
	}
	g := core.NewGrid(f.Rows, f.Cols)
	dst := g.Cells()
	for i, b := range f.Cells {
		dst[i] = core.Faction(b)
	}
	return g, nil
}

// FrameWriter appends one JSON line per exported generation to a
// zstd-compressed file. Write errors are kept and reported by Close.
type FrameWriter struct {
	logger *log.Logger

	mu     sync.Mutex
	f      *os.File
	enc    *zstd.Encoder
	w      *bufio.Writer
	err    error
	frames int
}

// NewFrameWriter creates (or truncates) path. logger may be nil.
func NewFrameWriter(path string, logger *log.Logger) (*FrameWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &FrameWriter{
		logger: logger,
		f:      f,
		enc:    enc,
		w:      bufio.NewWriterSize(enc, 256*1024),
	}, nil
}

// Export implements core.Sink.
func (w *FrameWriter) Export(g *core.Grid, generation int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil || w.w == nil {
		return
	}
	b, err := json.Marshal(NewFrame(g, generation))
	if err == nil {
		_, err = w.w.Write(b)
	}
	if err == nil {
		err = w.w.WriteByte('\n')
	}
	if err != nil {
		w.err = fmt.Errorf("frame %d: %w", generation, err)
		if w.logger != nil {
			w.logger.Printf("snapshot: %v; further frames dropped", w.err)
		}
		return
	}
	w.frames++
}

// Frames returns the number of frames written so far.
func (w *FrameWriter) Frames() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frames
}

// Close flushes and closes the file, returning the first error seen.
func (w *FrameWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return w.err
	}
	if err := w.w.Flush(); err != nil && w.err == nil {
		w.err = err
	}
	if err := w.enc.Close(); err != nil && w.err == nil {
		w.err = err
	}
	if err := w.f.Close(); err != nil && w.err == nil {
		w.err = err
	}
	w.w, w.enc, w.f = nil, nil, nil
	return w.err
}

// ReadFrames decodes every frame in a file written by FrameWriter.
func ReadFrames(path string) ([]Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 256*1024), 256*1024*1024)
	var frames []Frame
	for sc.Scan() {
		var fr Frame
		if err := json.Unmarshal(sc.Bytes(), &fr); err != nil {
			return frames, fmt.Errorf("frame %d: %w", len(frames), err)
		}
		frames = append(frames, fr)
	}
	if err := sc.Err(); err != nil {
		return frames, err
	}
	return frames, nil
}
