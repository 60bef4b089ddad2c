package recording

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	tevc "github.com/avivko/Oocyte-TVEC-analyzer"
)

// LoadText reads one sweep from whitespace separated columns
// "time current [command [voltage [shutter]]]". Blank lines and lines
// starting with '#' are skipped. The file carries no protocol, so the
// events are supplied by the caller.
func LoadText(path string, events tevc.Events) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		cols [5][]float64
		ncol int
		line int
	)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if ncol == 0 {
			ncol = min(len(fields), len(cols))
			if ncol < 2 {
				return nil, fmt.Errorf("%s:%d: need at least time and current columns", path, line)
			}
		}
		if len(fields) < ncol {
			return nil, fmt.Errorf("%s:%d: expected %d columns, got %d", path, line, ncol, len(fields))
		}
		for i := 0; i < ncol; i++ {
			val, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, line, err)
			}
			cols[i] = append(cols[i], val)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if ncol == 0 {
		return nil, fmt.Errorf("%s: no samples", path)
	}

	tr := tevc.Trace{Time: cols[0], Current: cols[1], Command: cols[2], Voltage: cols[3], Shutter: cols[4]}
	rec, err := New(events, tevc.DefaultLabels(), tr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rec.Path = path
	if len(tr.Time) > 1 && tr.Time[1] > tr.Time[0] {
		rec.DataRate = 1 / (tr.Time[1] - tr.Time[0])
	}
	return rec, nil
}
