package recording

import (
	"os"
	"path/filepath"
	"testing"

	tevc "github.com/avivko/Oocyte-TVEC-analyzer"
)

const exportJSON = `{
  "data_rate": 10,
  "labels": {"current": "Current (nA)"},
  "epochs": [0, 2, 10, 20, 30],
  "sweeps": [
    {"current": [0,1,2,3,4,5,6,7,8,9,10,11,12,13,14,15,16,17,18,19,20,21,22,23,24,25,26,27,28,29,30],
     "command": [-80,-80,-80,-80,-80,-80,-80,-80,-80,-80,-80,-80,-80,-80,-80,-80,-80,-80,-80,-80,-80,-80,-80,-80,-80,-80,-80,-80,-80,-80,-80]},
    {"current": [0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0],
     "command": [-60,-60,-60,-60,-60,-60,-60,-60,-60,-60,-60,-60,-60,-60,-60,-60,-60,-60,-60,-60,-60,-60,-60,-60,-60,-60,-60,-60,-60,-60,-60]}
  ]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(fn, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return fn
}

func TestLoadJSON_EventsAndTime(t *testing.T) {
	rec, err := Open(writeFile(t, "rec.json", exportJSON), tevc.Events{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if rec.SweepCount() != 2 || rec.DataRate != 10 {
		t.Fatalf("sweeps %d rate %v", rec.SweepCount(), rec.DataRate)
	}
	want := tevc.Events{ClampOn: 0.2, ShutterOn: 1, ShutterOff: 2, ClampOff: 3}
	if rec.Events != want {
		t.Fatalf("events %+v want %+v", rec.Events, want)
	}
	s, err := rec.Sweep(0)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if s.Trace.Len() != 31 || s.Trace.Time[15] != 1.5 {
		t.Fatalf("time axis %v", s.Trace.Time)
	}
	if s.Labels.Current != "Current (nA)" || s.Labels.Time != "Time (s)" {
		t.Fatalf("labels %+v", s.Labels)
	}
}

func TestRecording_SweepIsACopy(t *testing.T) {
	rec, err := LoadJSON(writeFile(t, "rec.json", exportJSON))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	a, _ := rec.Sweep(0)
	a.Trace.Current[3] = 1000

	b, _ := rec.Sweep(0)
	if b.Trace.Current[3] != 3 {
		t.Fatalf("sweep shares storage with the recording: %v", b.Trace.Current[3])
	}
	if _, err := rec.Sweep(2); err == nil {
		t.Fatalf("expected out of range error")
	}
}

func TestRecording_SweepVoltages(t *testing.T) {
	rec, err := LoadJSON(writeFile(t, "rec.json", exportJSON))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	v := rec.SweepVoltages()
	if len(v) != 2 || v[0] != -80 || v[1] != -60 {
		t.Fatalf("voltages %v", v)
	}
}

func TestLoadJSON_Invalid(t *testing.T) {
	cases := map[string]string{
		"rate":   `{"data_rate": 0, "epochs": [0,1,2,3,4], "sweeps": []}`,
		"epochs": `{"data_rate": 10, "epochs": [0,1,2], "sweeps": []}`,
		"order":  `{"data_rate": 10, "epochs": [0,5,2,3,4], "sweeps": []}`,
		"shape":  `{"data_rate": 10, "epochs": [0,1,2,3,4], "sweeps": [{"current": [1,2], "command": [1]}]}`,
		"syntax": `{"data_rate": `,
	}
	for name, content := range cases {
		if _, err := LoadJSON(writeFile(t, "bad.json", content)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadText(t *testing.T) {
	content := "# time current command\n0 1.5 -40\n0.5 2.5 -40\n\n1.0 3.5 -40\n1.5 4.5 -40\n"
	ev := tevc.Events{ClampOn: 0, ShutterOn: 0.5, ShutterOff: 1, ClampOff: 1.5}
	rec, err := Open(writeFile(t, "rec.txt", content), ev)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s, _ := rec.Sweep(0)
	if s.Trace.Len() != 4 || s.Trace.Current[2] != 3.5 || s.Trace.Command[3] != -40 {
		t.Fatalf("trace %+v", s.Trace)
	}
	if len(s.Trace.Voltage) != 0 || rec.DataRate != 2 {
		t.Fatalf("voltage %v rate %v", s.Trace.Voltage, rec.DataRate)
	}
}

func TestLoadText_BadLine(t *testing.T) {
	ev := tevc.Events{ClampOn: 0, ShutterOn: 0.5, ShutterOff: 1, ClampOff: 1.5}
	if _, err := LoadText(writeFile(t, "rec.txt", "0 1\n0.5 x\n"), ev); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := LoadText(writeFile(t, "rec.txt", "0 1\n0.5\n"), ev); err == nil {
		t.Fatalf("expected column count error")
	}
}
