package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
)

// maxLineSize bounds a single log line; zap never writes one this long
// unless a whole frame ended up in a field.
const maxLineSize = 1024 * 1024

// Read returns at most maxLines from the end of the file at path.
func Read(path string, maxLines int) ([]string, error) {
	return ReadMatching(path, maxLines, nil)
}

// ReadMatching returns the last maxLines lines for which match reports
// true. A nil match keeps every line. A missing file is not an error: the
// panel may not have logged anything yet.
func ReadMatching(path string, maxLines int, match func(string) bool) ([]string, error) {
	if maxLines <= 0 {
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

	tail := newRing(maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		if match != nil && !match(line) {
			continue
		}
		tail.push(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return tail.lines(), nil
}

// ring keeps the newest n strings pushed into it.
type ring struct {
	buf  []string
	next int
	full bool
}

func newRing(n int) *ring {
	return &ring{buf: make([]string, n)}
}

func (r *ring) push(s string) {
	r.buf[r.next] = s
	r.next = (r.next + 1) % len(r.buf)
	if r.next == 0 {
		r.full = true
	}
}

// lines returns the contents oldest first.
func (r *ring) lines() []string {
	if !r.full {
		return append([]string(nil), r.buf[:r.next]...)
	}
	out := make([]string, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	return append(out, r.buf[:r.next]...)
}
