package fort13

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/couchcryptid/mannings-editor/internal/domain"
)

// state is the position of the reader relative to the editable block.
type state int

const (
	stateScanHeader     state = iota // before the first name occurrence
	stateSkipDefault                 // inside the default-value section
	stateAwaitCount                  // next line is the record count
	stateRewriteRecords              // inside the per-node records
	statePassthrough                 // past the block
	stateDone                        // input exhausted cleanly
)

func (s state) String() string {
	switch s {
	case stateScanHeader:
		return "scan_header"
	case stateSkipDefault:
		return "skip_default"
	case stateAwaitCount:
		return "await_count"
	case stateRewriteRecords:
		return "rewrite_records"
	case statePassthrough:
		return "passthrough"
	case stateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// blockTracker locates the per-node block of a named attribute. The name
// appears twice in a fort.13 file: once in the header with its default
// value and once in front of the per-node overrides. Only the second
// occurrence opens the block.
type blockTracker struct {
	name      string
	state     state
	line      int
	count     int
	remaining int
}

func newBlockTracker(name string) *blockTracker {
	return &blockTracker{name: name, state: stateScanHeader}
}

// advance consumes one input line and returns the state it belongs to.
func (t *blockTracker) advance(line string) (state, error) {
	t.line++
	current := t.state

	switch current {
	case stateScanHeader:
		if firstField(line) == t.name {
			t.state = stateSkipDefault
		}
	case stateSkipDefault:
		if firstField(line) == t.name {
			t.state = stateAwaitCount
		}
	case stateAwaitCount:
		n, err := parseCount(line)
		if err != nil {
			return current, fmt.Errorf("%w: line %d: %v", domain.ErrAttributeFormat, t.line, err)
		}
		t.count, t.remaining = n, n
		if n == 0 {
			t.state = statePassthrough
		} else {
			t.state = stateRewriteRecords
		}
	case stateRewriteRecords:
		t.remaining--
		if t.remaining == 0 {
			t.state = statePassthrough
		}
	case statePassthrough, stateDone:
	}

	return current, nil
}

// finish is called at end of input. It fails unless the whole block was seen.
func (t *blockTracker) finish() error {
	switch t.state {
	case stateScanHeader:
		return fmt.Errorf("%w: %q not found", domain.ErrAttributeFormat, t.name)
	case stateSkipDefault:
		return fmt.Errorf("%w: %q appears once, expected a default section and a per-node section",
			domain.ErrAttributeFormat, t.name)
	case stateAwaitCount:
		return fmt.Errorf("%w: missing record count after second %q", domain.ErrAttributeFormat, t.name)
	case stateRewriteRecords:
		return fmt.Errorf("%w: %q block declares %d records, found %d",
			domain.ErrAttributeFormat, t.name, t.count, t.count-t.remaining)
	case statePassthrough, stateDone:
	}
	t.state = stateDone
	return nil
}

func firstField(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func parseCount(line string) (int, error) {
	tok := firstField(line)
	if tok == "" {
		return 0, fmt.Errorf("empty record count line")
	}
	n, err := strconv.Atoi(tok)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid record count %q", tok)
	}
	return n, nil
}

// parseRecord reads the node id and value from a per-node record line.
// Fields past the second are ignored.
func parseRecord(line string) (int, float64, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, 0, fmt.Errorf("want node id and value, got %d fields", len(fields))
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid node id %q", fields[0])
	}
	v, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid value %q", fields[1])
	}
	return id, v, nil
}
