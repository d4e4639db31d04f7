package fort13

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/couchcryptid/mannings-editor/internal/domain"
)

const bufferSize = 64 * 1024

// Rewriter edits the Manning's n per-node block of a fort.13 stream.
// It implements pipeline.AttributeRewriter.
type Rewriter struct {
	logger *slog.Logger
}

// NewRewriter creates a Rewriter.
func NewRewriter(logger *slog.Logger) *Rewriter {
	return &Rewriter{logger: logger}
}

// Rewrite copies r to w, replacing the value of every per-node Manning's n
// record whose node matches match with modify(old). Matched records are
// written as "<id> <value>" with six decimals; every other line is copied
// byte for byte. The input is read one line at a time.
func (rw *Rewriter) Rewrite(r io.Reader, w io.Writer, mesh *domain.Mesh, match domain.Predicate, modify domain.Modifier) (domain.RewriteResult, error) {
	br := bufio.NewReaderSize(r, bufferSize)
	bw := bufio.NewWriterSize(w, bufferSize)
	tracker := newBlockTracker(domain.ManningsAttribute)

	var res domain.RewriteResult
	for {
		line, readErr := br.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return res, fmt.Errorf("read attributes: %w", readErr)
		}
		if line != "" {
			before := tracker.state
			st, err := tracker.advance(line)
			if err != nil {
				return res, err
			}
			if tracker.state != before {
				rw.logger.Debug("attribute block state", "from", before.String(), "to", tracker.state.String(), "line", tracker.line)
			}

			out := line
			if st == stateRewriteRecords {
				out, err = rw.rewriteRecord(line, tracker.line, mesh, match, modify, &res)
				if err != nil {
					return res, err
				}
			}
			if _, err := bw.WriteString(out); err != nil {
				return res, fmt.Errorf("write attributes: %w", err)
			}
		}
		if readErr != nil {
			break
		}
	}

	if err := tracker.finish(); err != nil {
		return res, err
	}
	if err := bw.Flush(); err != nil {
		return res, fmt.Errorf("write attributes: %w", err)
	}

	rw.logger.Debug("attribute rewrite finished", "lines", tracker.line, "records", res.Records, "modified", res.Modified)
	return res, nil
}

func (rw *Rewriter) rewriteRecord(line string, lineNo int, mesh *domain.Mesh, match domain.Predicate, modify domain.Modifier, res *domain.RewriteResult) (string, error) {
	id, old, err := parseRecord(line)
	if err != nil {
		return "", fmt.Errorf("%w: line %d: %v", domain.ErrAttributeFormat, lineNo, err)
	}
	if !mesh.Contains(id) {
		return "", fmt.Errorf("%w: line %d: node %d outside mesh (1..%d)", domain.ErrAttributeFormat, lineNo, id, mesh.Len())
	}

	res.Records++
	if !match(id, mesh) {
		return line, nil
	}

	v := modify(old)
	res.Observe(v)
	return formatRecord(id, v), nil
}

func formatRecord(id int, v float64) string {
	return strconv.Itoa(id) + " " + strconv.FormatFloat(v, 'f', 6, 64) + "\n"
}
