package main

import (
	"fmt"
	"strconv"
	"strings"

	"faction-ca/internal/config"
)

// parseDims reads "ROWSxCOLS" into rw.
func parseDims(value string, rw *config.RandomWorld) error {
	r, c, ok := strings.Cut(strings.ToLower(strings.TrimSpace(value)), "x")
	if !ok {
		return fmt.Errorf("random: expected ROWSxCOLS, got %q", value)
	}
	rows, err := strconv.Atoi(r)
	if err != nil {
		return fmt.Errorf("random rows: %w", err)
	}
	cols, err := strconv.Atoi(c)
	if err != nil {
		return fmt.Errorf("random cols: %w", err)
	}
	rw.Rows, rw.Cols = rows, cols
	return nil
}
