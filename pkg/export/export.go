// Package export writes run reports and corrected traces to disk.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	tevc "github.com/avivko/Oocyte-TVEC-analyzer"
)

// WriteJSON writes v as indented JSON, creating parent directories.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// WriteCSV writes one row per sample of every correction. Nil entries
// (failed sweeps) are skipped.
func WriteCSV(path string, corrections []*tevc.Correction) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeCSV(f, corrections); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// EncodeCSV writes the columns sweep, time, raw current and corrected current.
func EncodeCSV(w io.Writer, corrections []*tevc.Correction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"sweep", "time", "raw_current", "corrected_current"}); err != nil {
		return err
	}
	for _, c := range corrections {
		if c == nil {
			continue
		}
		idx := strconv.Itoa(c.Raw.Index)
		raw, corrected := c.Raw.Trace.Current, c.Corrected()
		for i, t := range c.Raw.Trace.Time {
			rec := []string{idx, format(t), format(raw[i]), format(corrected[i])}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
