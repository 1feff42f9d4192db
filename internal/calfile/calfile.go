// Package calfile reads and writes the calendar data file: one event per
// line in the canonical codec format,
//
//	MM/DD/YYYY [id] [>note ]message
//
// The line prefix (date, id, optional note token) is parsed here; the
// message and filter handling are delegated to the event codec.
package calfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/starford/dagaz/internal/event"
)

// Load parses events from r into st, applying an optional filter. It
// returns the number of events retained. Structural errors carry the
// one-based line number; filtered-out lines are consumed silently.
func Load(st *event.Store, r io.Reader, f *event.Filter) (int, error) {
	scanner := bufio.NewScanner(r)
	loaded := 0
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		d, id, note, msg, err := splitLine(line)
		if err != nil {
			return loaded, fmt.Errorf("calfile: line %d: %w", lineno, err)
		}
		ev, err := event.Scan(st, bufio.NewReader(strings.NewReader(msg+"\n")), d, id, note, f)
		if err != nil {
			return loaded, fmt.Errorf("calfile: line %d: %w", lineno, err)
		}
		if ev != nil {
			loaded++
		}
	}
	if err := scanner.Err(); err != nil {
		return loaded, fmt.Errorf("calfile: read: %w", err)
	}
	return loaded, nil
}

// Save writes every event of st to w in store order.
func Save(w io.Writer, st *event.Store) error {
	for _, ev := range st.All() {
		if err := event.Write(w, ev); err != nil {
			return fmt.Errorf("calfile: write: %w", err)
		}
	}
	return nil
}

// splitLine parses the fixed prefix of an event line and returns the
// structured date, id, note identifier ("" when absent), and the message
// remainder.
func splitLine(line string) (event.Date, int, string, string, error) {
	var d event.Date

	datePart, rest, ok := strings.Cut(line, " ")
	if !ok {
		return d, 0, "", "", fmt.Errorf("missing event fields")
	}
	parts := strings.Split(datePart, "/")
	if len(parts) != 3 {
		return d, 0, "", "", fmt.Errorf("malformed date %q", datePart)
	}
	var err error
	if d.Month, err = strconv.Atoi(parts[0]); err != nil {
		return d, 0, "", "", fmt.Errorf("malformed month %q", parts[0])
	}
	if d.Day, err = strconv.Atoi(parts[1]); err != nil {
		return d, 0, "", "", fmt.Errorf("malformed day %q", parts[1])
	}
	if d.Year, err = strconv.Atoi(parts[2]); err != nil {
		return d, 0, "", "", fmt.Errorf("malformed year %q", parts[2])
	}

	idPart, msg, ok := strings.Cut(rest, " ")
	if !ok || !strings.HasPrefix(idPart, "[") || !strings.HasSuffix(idPart, "]") {
		return d, 0, "", "", fmt.Errorf("missing event id")
	}
	id, err := strconv.Atoi(idPart[1 : len(idPart)-1])
	if err != nil {
		return d, 0, "", "", fmt.Errorf("malformed event id %q", idPart)
	}

	note := ""
	if strings.HasPrefix(msg, ">") {
		tok, remainder, ok := strings.Cut(msg[1:], " ")
		if !ok || tok == "" {
			return d, 0, "", "", fmt.Errorf("malformed note token")
		}
		note = tok
		msg = remainder
	}
	return d, id, note, msg, nil
}
