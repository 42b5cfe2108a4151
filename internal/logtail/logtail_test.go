package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeLog(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "easyloft.log")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestTailKeepsNewestEntries(t *testing.T) {
	var lines []string
	for i := 1; i <= 10; i++ {
		lines = append(lines, fmt.Sprintf(`{"level":"info","msg":"line %d"}`, i))
	}
	path := writeLog(t, lines...)

	tests := []struct {
		name  string
		max   int
		first string
		count int
	}{
		{"fewer than file", 4, "line 7", 4},
		{"exactly file", 10, "line 1", 10},
		{"more than file", 25, "line 1", 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := Tail(path, tt.max)
			if err != nil {
				t.Fatalf("Tail: %v", err)
			}
			if len(entries) != tt.count {
				t.Fatalf("Tail returned %d entries, want %d", len(entries), tt.count)
			}
			if entries[0].Message != tt.first {
				t.Fatalf("first entry = %q, want %q", entries[0].Message, tt.first)
			}
			if last := entries[len(entries)-1].Message; last != "line 10" {
				t.Fatalf("last entry = %q, want line 10", last)
			}
		})
	}
}

func TestTailNonPositiveMax(t *testing.T) {
	path := writeLog(t, `{"msg":"x"}`)
	for _, n := range []int{0, -3} {
		entries, err := Tail(path, n)
		if err != nil || entries != nil {
			t.Fatalf("Tail(%d) = %v, %v; want nil, nil", n, entries, err)
		}
	}
}

func TestTailMissingFile(t *testing.T) {
	entries, err := Tail(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil {
		t.Fatalf("Tail on missing file: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("Tail on missing file returned %d entries", len(entries))
	}
}

func TestParseZapLine(t *testing.T) {
	e := Parse(`{"level":"WARN","ts":"2026-03-01T10:04:05.120Z","logger":"lofts","msg":"store action failed","error":"Unauthorized","app":"easyloft"}`)

	if e.Level != "warn" {
		t.Errorf("Level = %q, want warn", e.Level)
	}
	want := time.Date(2026, 3, 1, 10, 4, 5, 120_000_000, time.UTC)
	if !e.Time.Equal(want) {
		t.Errorf("Time = %v, want %v", e.Time, want)
	}
	if got := e.Text(); got != "lofts: store action failed (Unauthorized)" {
		t.Errorf("Text() = %q", got)
	}
}

func TestParseKeepsPlainLines(t *testing.T) {
	for _, line := range []string{"panic: boom", `"just a string"`, "[1,2]"} {
		e := Parse(line)
		if e.Raw != line || e.Text() != line {
			t.Errorf("Parse(%q) = %+v, want raw line", line, e)
		}
	}
}
