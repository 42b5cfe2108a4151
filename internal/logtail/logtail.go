package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Entry is one decoded line of the client log.
type Entry struct {
	Time    time.Time
	Level   string
	Logger  string
	Message string
	Error   string
	// Raw holds the line as written when it is not a JSON object.
	Raw string
}

// Text renders the entry on one line without the timestamp.
func (e Entry) Text() string {
	if e.Raw != "" {
		return e.Raw
	}
	var b strings.Builder
	if e.Logger != "" {
		b.WriteString(e.Logger)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Error != "" {
		b.WriteString(" (")
		b.WriteString(e.Error)
		b.WriteString(")")
	}
	return b.String()
}

// Tail returns up to maxEntries of the newest entries in the log at path,
// oldest first. A missing file is an empty log.
func Tail(path string, maxEntries int) ([]Entry, error) {
	lines, err := readLast(path, maxEntries)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, Parse(line))
	}
	return entries, nil
}

// Parse decodes a zap JSON line. Lines that are not JSON objects come back
// with only Raw set.
func Parse(line string) Entry {
	if !gjson.Valid(line) {
		return Entry{Raw: line}
	}
	res := gjson.Parse(line)
	if !res.IsObject() {
		return Entry{Raw: line}
	}
	fields := gjson.GetMany(line, "ts", "level", "logger", "msg", "error")
	entry := Entry{
		Level:   strings.ToLower(fields[1].String()),
		Logger:  fields[2].String(),
		Message: fields[3].String(),
		Error:   fields[4].String(),
	}
	if ts, err := time.Parse("2006-01-02T15:04:05.000Z0700", fields[0].String()); err == nil {
		entry.Time = ts
	}
	return entry
}

// readLast keeps the last n lines of the file in a ring.
func readLast(path string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, n)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	total := 0
	for scanner.Scan() {
		ring[total%n] = scanner.Text()
		total++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	if total <= n {
		return ring[:total], nil
	}
	start := total % n
	return append(ring[start:], ring[:start]...), nil
}
