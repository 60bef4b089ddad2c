package utils

import (
	"strings"
	"testing"
)

func TestGenerateID_Unique(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Fatalf("ids collide: %s", a)
	}
	if len(strings.Split(a, "-")) != 3 {
		t.Fatalf("unexpected format %q", a)
	}
}
