package fort13

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/couchcryptid/mannings-editor/internal/domain"
)

// maxViolations caps the number of violation messages kept in a Comparison.
const maxViolations = 20

// Comparison is the outcome of checking a rewritten fort.13 against its
// original.
type Comparison struct {
	Lines          int      `json:"lines"`
	Records        int      `json:"records"`
	Changed        int      `json:"changed"`
	ViolationCount int      `json:"violation_count"`
	Violations     []string `json:"violations,omitempty"`
}

// OK reports whether the rewrite preserved everything outside the block.
func (c *Comparison) OK() bool {
	return c.ViolationCount == 0
}

func (c *Comparison) violate(format string, args ...any) {
	c.ViolationCount++
	if len(c.Violations) < maxViolations {
		c.Violations = append(c.Violations, fmt.Sprintf(format, args...))
	}
}

// Compare streams original and modified in lockstep and checks that:
//   - both have the same number of lines,
//   - every line outside the Manning's n per-node block is identical,
//   - every record inside the block keeps its node id.
//
// Changed counts records whose line differs. A malformed original is
// returned as an error; problems in modified are reported as violations.
func Compare(original, modified io.Reader) (Comparison, error) {
	ar := bufio.NewReaderSize(original, bufferSize)
	br := bufio.NewReaderSize(modified, bufferSize)
	tracker := newBlockTracker(domain.ManningsAttribute)

	var c Comparison
	for {
		a, err := readLine(ar, "original")
		if err != nil {
			return c, err
		}
		b, err := readLine(br, "modified")
		if err != nil {
			return c, err
		}

		if a == "" && b == "" {
			break
		}
		if a == "" {
			c.violate("modified has extra lines from line %d", c.Lines+1)
			return c, nil
		}
		if b == "" {
			c.violate("modified ends after line %d, original continues", c.Lines)
			return c, nil
		}

		c.Lines++
		st, err := tracker.advance(a)
		if err != nil {
			return c, err
		}
		if st != stateRewriteRecords {
			if a != b {
				c.violate("line %d changed outside the %s block", c.Lines, domain.ManningsAttribute)
			}
			continue
		}

		c.Records++
		idA, _, err := parseRecord(a)
		if err != nil {
			return c, fmt.Errorf("%w: original line %d: %v", domain.ErrAttributeFormat, c.Lines, err)
		}
		idB, _, err := parseRecord(b)
		switch {
		case err != nil:
			c.violate("line %d: unparsable record: %v", c.Lines, err)
		case idA != idB:
			c.violate("line %d: node id changed from %d to %d", c.Lines, idA, idB)
		case a != b:
			c.Changed++
		}
	}

	if err := tracker.finish(); err != nil {
		return c, err
	}
	return c, nil
}

// readLine returns the next line including its terminator, or "" at EOF.
func readLine(r *bufio.Reader, which string) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", which, err)
	}
	return line, nil
}
