package fort14

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/mannings-editor/internal/domain"
)

// maxLineSize bounds a single mesh line.
const maxLineSize = 1024 * 1024

// maxPrealloc caps the node slice allocated from the header count.
const maxPrealloc = 1 << 20

// Loader reads fort.14 files from disk.
// It implements pipeline.MeshLoader.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a Loader.
func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{logger: logger}
}

// LoadMesh reads the node table from the fort.14 file at path.
func (l *Loader) LoadMesh(_ context.Context, path string) (*domain.Mesh, error) {
	mesh, err := Load(path)
	if err != nil {
		return nil, err
	}
	l.logger.Info("mesh loaded", "path", path, "nodes", mesh.Len(), "title", mesh.Title)
	return mesh, nil
}

// Load opens path and reads it with Read.
func Load(path string) (*domain.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mesh: %w", err)
	}
	defer f.Close()

	mesh, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read mesh %s: %w", path, err)
	}
	return mesh, nil
}

// Read parses the title, node count and node rows of a fort.14 stream.
// Element and boundary sections after the node rows are not read.
func Read(r io.Reader) (*domain.Mesh, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	if !scanner.Scan() {
		return nil, scanErr(scanner, "missing title line")
	}
	title := strings.TrimSpace(scanner.Text())

	if !scanner.Scan() {
		return nil, scanErr(scanner, "missing node count line")
	}
	count, err := parseNodeCount(scanner.Text())
	if err != nil {
		return nil, err
	}

	nodes := make([]domain.Node, 0, min(count, maxPrealloc))
	lineNo := 2
	for len(nodes) < count && scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		node, err := parseNodeRow(line)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", domain.ErrMeshFormat, lineNo, err)
		}
		nodes = append(nodes, node)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan mesh: %w", err)
	}
	if len(nodes) < count {
		return nil, fmt.Errorf("%w: expected %d node rows, found %d", domain.ErrMeshFormat, count, len(nodes))
	}

	return domain.NewMesh(title, nodes), nil
}

// parseNodeCount reads NP, the second token of the "NE NP" header line.
func parseNodeCount(line string) (int, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, fmt.Errorf("%w: node count header %q has no node count", domain.ErrMeshFormat, line)
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: invalid node count %q", domain.ErrMeshFormat, fields[1])
	}
	return n, nil
}

// parseNodeRow reads x, y and depth from fields 1-3 of a node row.
func parseNodeRow(line string) (domain.Node, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return domain.Node{}, fmt.Errorf("want at least 4 fields, got %d", len(fields))
	}

	var vals [3]float64
	for i := range vals {
		v, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return domain.Node{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		vals[i] = v
	}
	return domain.Node{X: vals[0], Y: vals[1], Depth: vals[2]}, nil
}

func scanErr(scanner *bufio.Scanner, msg string) error {
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan mesh: %w", err)
	}
	return fmt.Errorf("%w: %s", domain.ErrMeshFormat, msg)
}
