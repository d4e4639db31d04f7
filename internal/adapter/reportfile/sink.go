package reportfile

import (
	"context"
	"fmt"
	"os"

	"github.com/couchcryptid/mannings-editor/internal/domain"
	"github.com/goccy/go-yaml"
)

// Sink writes each run report as a YAML document to a file.
// It implements pipeline.ReportSink.
type Sink struct {
	path string
}

// NewSink creates a Sink that writes to path, replacing any previous report.
func NewSink(path string) *Sink {
	return &Sink{path: path}
}

// Name identifies the sink in logs and metrics.
func (s *Sink) Name() string {
	return "file"
}

// Publish marshals report and writes it to the sink's path.
func (s *Sink) Publish(_ context.Context, report domain.Report) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", s.path, err)
	}
	return nil
}
