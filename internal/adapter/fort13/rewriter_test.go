package fort13

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/couchcryptid/mannings-editor/internal/domain"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const attrHeader = `scenario attributes
3
2
mannings_n_at_sea_floor
unitless
1
0.02
primitive_weighting_in_continuity_equation
unitless
1
0.03
`

const attrTail = `primitive_weighting_in_continuity_equation
1
3 0.050000
`

const scenarioAttributes = attrHeader + `mannings_n_at_sea_floor
3
1 0.050000
2 0.050000
3 0.050000
` + attrTail

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func scenarioMesh() *domain.Mesh {
	return domain.NewMesh("scenario", []domain.Node{
		{X: -95.0, Y: 29.0, Depth: 1.0},
		{X: -94.5, Y: 29.5, Depth: -1.0},
		{X: -93.0, Y: 29.0, Depth: 0.0},
	})
}

func rewrite(t *testing.T, src string, mesh *domain.Mesh, match domain.Predicate, modify domain.Modifier) (string, domain.RewriteResult, error) {
	t.Helper()
	var out bytes.Buffer
	res, err := NewRewriter(discardLogger()).Rewrite(strings.NewReader(src), &out, mesh, match, modify)
	return out.String(), res, err
}

// changedLines returns the lines of after that a line diff reports as
// inserted relative to before.
func changedLines(before, after string) []string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []string
	for _, d := range diffs {
		if d.Type != diffmatchpatch.DiffInsert {
			continue
		}
		out = append(out, strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n")...)
	}
	return out
}

func TestRewrite_Scenario(t *testing.T) {
	mesh := scenarioMesh()

	t.Run("criterion 1, multiply by 10", func(t *testing.T) {
		pred, _, err := domain.SelectCriterion(1, domain.DefaultBox, domain.DefaultNAVD)
		require.NoError(t, err)

		out, res, err := rewrite(t, scenarioAttributes, mesh, pred, domain.Multiply(10))
		require.NoError(t, err)

		expected := attrHeader + `mannings_n_at_sea_floor
3
1 0.500000
2 0.500000
3 0.050000
` + attrTail
		assert.Equal(t, expected, out)
		assert.Equal(t, 3, res.Records)
		assert.Equal(t, 2, res.Modified)
		assert.Equal(t, 0.5, res.MinValue)
		assert.Equal(t, 0.5, res.MaxValue)
		assert.Equal(t, []string{"1 0.500000", "2 0.500000"}, changedLines(scenarioAttributes, out))
	})

	t.Run("criterion 2 adds the datum check", func(t *testing.T) {
		pred, _, err := domain.SelectCriterion(2, domain.DefaultBox, domain.DefaultNAVD)
		require.NoError(t, err)

		out, res, err := rewrite(t, scenarioAttributes, mesh, pred, domain.Multiply(10))
		require.NoError(t, err)

		assert.Equal(t, 1, res.Modified)
		assert.Contains(t, out, "1 0.050000\n2 0.500000\n3 0.050000\n")
		assert.Equal(t, []string{"2 0.500000"}, changedLines(scenarioAttributes, out))
	})
}

func TestRewrite_PassThroughIsByteExact(t *testing.T) {
	src := "title with  double  spaces\r\n" +
		"3\r\n" +
		"\r\n" +
		"mannings_n_at_sea_floor\r\n" +
		"unitless\r\n" +
		"1\r\n" +
		"  0.02   \r\n" +
		"note mannings_n_at_sea_floor is not first here\r\n" +
		"mannings_n_at_sea_floor_v2 is a different name\r\n" +
		"mannings_n_at_sea_floor\r\n" +
		"3   # record count\r\n" +
		"1\t0.05\r\n" +
		"2 0.05 trailing fields\r\n" +
		"3 0.05\r\n" +
		"mannings_n_at_sea_floor\r\n" +
		"no trailing newline"

	none := func(int, *domain.Mesh) bool { return false }
	out, res, err := rewrite(t, src, scenarioMesh(), none, domain.Multiply(2))
	require.NoError(t, err)
	assert.Equal(t, src, out)
	assert.Equal(t, 3, res.Records)
	assert.Zero(t, res.Modified)

	all := func(int, *domain.Mesh) bool { return true }
	out, res, err = rewrite(t, src, scenarioMesh(), all, domain.Multiply(2))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Modified)
	assert.Equal(t, []string{"1 0.100000", "2 0.100000", "3 0.100000"}, changedLines(src, out))
	assert.True(t, strings.HasSuffix(out, "3 0.100000\nmannings_n_at_sea_floor\r\nno trailing newline"))
}

func TestRewrite_ZeroRecords(t *testing.T) {
	src := attrHeader + "mannings_n_at_sea_floor\n0\n" + attrTail
	out, res, err := rewrite(t, src, scenarioMesh(), domain.And(), domain.Multiply(10))
	require.NoError(t, err)
	assert.Equal(t, src, out)
	assert.Zero(t, res.Records)
	assert.Zero(t, res.Modified)
}

func TestRewrite_RandomizeStaysInBounds(t *testing.T) {
	const n = 500
	nodes := make([]domain.Node, n)
	var b strings.Builder
	b.WriteString(attrHeader)
	fmt.Fprintf(&b, "%s\n%d\n", domain.ManningsAttribute, n)
	for i := range nodes {
		nodes[i] = domain.Node{X: -95, Y: 29}
		fmt.Fprintf(&b, "%d 0.025\n", i+1)
	}
	b.WriteString(attrTail)
	src := b.String()

	mod := domain.Randomize(rand.New(rand.NewPCG(7, 11)))
	out, res, err := rewrite(t, src, domain.NewMesh("", nodes), domain.BoxPredicate(domain.DefaultBox), mod)
	require.NoError(t, err)
	assert.Equal(t, n, res.Modified)
	assert.GreaterOrEqual(t, res.MinValue, domain.RandomMin)
	assert.LessOrEqual(t, res.MaxValue, domain.RandomMax)

	inLines := strings.Split(src, "\n")
	outLines := strings.Split(out, "\n")
	require.Len(t, outLines, len(inLines))

	start := strings.Count(attrHeader, "\n") + 2
	for i := start; i < start+n; i++ {
		id, v, err := parseRecord(outLines[i])
		require.NoError(t, err)
		assert.Equal(t, i-start+1, id, "node id preserved")
		assert.GreaterOrEqual(t, v, domain.RandomMin)
		assert.LessOrEqual(t, v, domain.RandomMax)
		assert.Regexp(t, `^\d+ \d\.\d{6}$`, outLines[i])
	}
	assert.Equal(t, inLines[:start], outLines[:start])
	assert.Equal(t, inLines[start+n:], outLines[start+n:])
}

func TestRewrite_Errors(t *testing.T) {
	block := func(body string) string { return attrHeader + domain.ManningsAttribute + "\n" + body }

	tests := []struct {
		name    string
		src     string
		message string
	}{
		{"name absent", "title\n3\n0\n", "not found"},
		{"name once", "title\n3\n1\nmannings_n_at_sea_floor\nunitless\n1\n0.02\n", "appears once"},
		{"missing count", attrHeader + domain.ManningsAttribute + "\n", "missing record count"},
		{"count not numeric", block("three\n"), `line 13: invalid record count "three"`},
		{"count negative", block("-1\n"), "invalid record count"},
		{"count blank", block("\n1 0.05\n"), "empty record count line"},
		{"record one field", block("2\n1\n2 0.05\n"), "line 14: want node id and value"},
		{"record bad id", block("1\nx 0.05\n"), `invalid node id "x"`},
		{"record bad value", block("1\n1 n/a\n"), `invalid value "n/a"`},
		{"records truncated", block("3\n1 0.05\n"), "declares 3 records, found 1"},
		{"node outside mesh", block("1\n4 0.05\n"), "node 4 outside mesh (1..3)"},
		{"node zero", block("1\n0 0.05\n"), "node 0 outside mesh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := rewrite(t, tt.src, scenarioMesh(), domain.And(), domain.Multiply(2))
			require.ErrorIs(t, err, domain.ErrAttributeFormat)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRewrite_WriteError(t *testing.T) {
	_, err := NewRewriter(discardLogger()).Rewrite(strings.NewReader(scenarioAttributes), failingWriter{},
		scenarioMesh(), domain.And(), domain.Multiply(2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write attributes")
}

func TestBlockTracker_States(t *testing.T) {
	tr := newBlockTracker(domain.ManningsAttribute)
	lines := strings.SplitAfter(scenarioAttributes, "\n")

	var got []state
	for _, line := range lines {
		if line == "" {
			continue
		}
		st, err := tr.advance(line)
		require.NoError(t, err)
		got = append(got, st)
	}
	require.NoError(t, tr.finish())
	assert.Equal(t, stateDone, tr.state)

	expected := []state{
		// title, node count, attribute count, first name occurrence
		stateScanHeader, stateScanHeader, stateScanHeader, stateScanHeader,
		// default sections of both attributes, then the second name occurrence
		stateSkipDefault, stateSkipDefault, stateSkipDefault,
		stateSkipDefault, stateSkipDefault, stateSkipDefault, stateSkipDefault,
		stateSkipDefault,
		stateAwaitCount,
		stateRewriteRecords, stateRewriteRecords, stateRewriteRecords,
		statePassthrough, statePassthrough, statePassthrough,
	}
	assert.Equal(t, expected, got)
	assert.Equal(t, "rewrite_records", stateRewriteRecords.String())
}
