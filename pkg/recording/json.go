package recording

import (
	"encoding/json"
	"fmt"
	"os"

	tevc "github.com/avivko/Oocyte-TVEC-analyzer"
)

// File is the JSON export of an ABF recording. Epochs are the sample
// indices where the protocol epochs begin; epochs 1 to 4 are clamp-on,
// shutter-on, shutter-off and clamp-off.
type File struct {
	DataRate float64     `json:"data_rate"`
	Labels   *FileLabels `json:"labels,omitempty"`
	Epochs   []int       `json:"epochs"`
	Sweeps   []FileSweep `json:"sweeps"`
}

type FileLabels struct {
	Time    string `json:"time,omitempty"`
	Current string `json:"current,omitempty"`
	Command string `json:"command,omitempty"`
	Voltage string `json:"voltage,omitempty"`
	Shutter string `json:"shutter,omitempty"`
}

type FileSweep struct {
	Current []float64 `json:"current"`
	Command []float64 `json:"command,omitempty"`
	Voltage []float64 `json:"voltage,omitempty"`
	Shutter []float64 `json:"shutter,omitempty"`
}

func LoadJSON(path string) (*Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	rec, err := f.Recording()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rec.Path = path
	return rec, nil
}

// Recording converts the export into sweeps with a time axis of
// index / data rate.
func (f *File) Recording() (*Recording, error) {
	if f.DataRate <= 0 {
		return nil, fmt.Errorf("invalid data rate %v", f.DataRate)
	}
	if len(f.Epochs) < 5 {
		return nil, fmt.Errorf("need 5 epoch boundaries, got %d", len(f.Epochs))
	}
	events := tevc.Events{
		ClampOn:    float64(f.Epochs[1]) / f.DataRate,
		ShutterOn:  float64(f.Epochs[2]) / f.DataRate,
		ShutterOff: float64(f.Epochs[3]) / f.DataRate,
		ClampOff:   float64(f.Epochs[4]) / f.DataRate,
	}

	traces := make([]tevc.Trace, len(f.Sweeps))
	for i, s := range f.Sweeps {
		t := make([]float64, len(s.Current))
		for j := range t {
			t[j] = float64(j) / f.DataRate
		}
		traces[i] = tevc.Trace{Time: t, Current: s.Current, Command: s.Command, Voltage: s.Voltage, Shutter: s.Shutter}
	}
	rec, err := New(events, f.labels(), traces...)
	if err != nil {
		return nil, err
	}
	rec.DataRate = f.DataRate
	return rec, nil
}

func (f *File) labels() tevc.Labels {
	l := tevc.DefaultLabels()
	if f.Labels == nil {
		return l
	}
	for dst, src := range map[*string]string{
		&l.Time:    f.Labels.Time,
		&l.Current: f.Labels.Current,
		&l.Command: f.Labels.Command,
		&l.Voltage: f.Labels.Voltage,
		&l.Shutter: f.Labels.Shutter,
	} {
		if src != "" {
			*dst = src
		}
	}
	return l
}
