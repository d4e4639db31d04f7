package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/mannings-editor/internal/adapter/fort13"
	"github.com/couchcryptid/mannings-editor/internal/domain"
	"github.com/couchcryptid/mannings-editor/internal/observability"
	"github.com/jonboulle/clockwork"
)

// MeshLoader reads the node table of a fort.14 file.
type MeshLoader interface {
	LoadMesh(ctx context.Context, path string) (*domain.Mesh, error)
}

// AttributeRewriter streams a fort.13 file, editing the Manning's n block.
type AttributeRewriter interface {
	Rewrite(r io.Reader, w io.Writer, mesh *domain.Mesh, match domain.Predicate, modify domain.Modifier) (domain.RewriteResult, error)
}

// ReportSink receives the report of a successful run.
type ReportSink interface {
	Name() string
	Publish(ctx context.Context, report domain.Report) error
}

// Pipeline orchestrates the load-rewrite-publish sequence of one edit.
type Pipeline struct {
	loader   MeshLoader
	rewriter AttributeRewriter
	sinks    []ReportSink
	logger   *slog.Logger
	metrics  *observability.Metrics
	clock    clockwork.Clock
}

// New creates a Pipeline with the given stages and observability.
func New(l MeshLoader, rw AttributeRewriter, sinks []ReportSink, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Pipeline {
	return &Pipeline{
		loader:   l,
		rewriter: rw,
		sinks:    sinks,
		logger:   logger,
		metrics:  metrics,
		clock:    clock,
	}
}

// Run loads the mesh, rewrites job.AttributePath into job.OutputPath and
// publishes the report. The output is written to a temporary file in the
// output directory and renamed into place only after the rewrite (and the
// optional verification) succeeds, so a failed run never leaves a partial
// output behind. The input file is never modified.
func (p *Pipeline) Run(ctx context.Context, job domain.Job) (domain.Report, error) {
	start := p.clock.Now()
	p.logger.Info("edit started",
		"attributes", job.AttributePath,
		"mesh", job.MeshPath,
		"output", job.OutputPath,
		"criterion", job.CriterionDescription,
		"modifier", job.ModifierDescription,
	)

	mesh, err := p.loader.LoadMesh(ctx, job.MeshPath)
	if err != nil {
		p.metrics.ErrorsTotal.WithLabelValues(observability.StageMesh).Inc()
		return domain.Report{}, err
	}
	p.metrics.MeshNodes.Set(float64(mesh.Len()))

	res, err := p.rewriteToOutput(job, mesh)
	if err != nil {
		return domain.Report{}, err
	}

	p.metrics.RecordsScanned.Add(float64(res.Records))
	p.metrics.NodesModified.Add(float64(res.Modified))
	p.metrics.RewriteDuration.Observe(p.clock.Since(start).Seconds())

	report := domain.NewReport(job, mesh.Len(), res, start, p.clock.Now())
	p.logger.Info("edit finished",
		"output", job.OutputPath,
		"records", res.Records,
		"modified", res.Modified,
		"duration_seconds", report.DurationSeconds,
	)

	p.publish(ctx, report)
	return report, nil
}

// rewriteToOutput runs the rewrite into a temporary file and renames it
// over job.OutputPath.
func (p *Pipeline) rewriteToOutput(job domain.Job, mesh *domain.Mesh) (res domain.RewriteResult, err error) {
	in, err := os.Open(job.AttributePath)
	if err != nil {
		p.metrics.ErrorsTotal.WithLabelValues(observability.StageAttribute).Inc()
		return res, fmt.Errorf("open attributes: %w", err)
	}
	defer in.Close()

	dir, base := filepath.Split(job.OutputPath)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		p.metrics.ErrorsTotal.WithLabelValues(observability.StageOutput).Inc()
		return res, fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	res, err = p.rewriter.Rewrite(in, tmp, mesh, job.Criterion, job.Modifier)
	if err != nil {
		p.metrics.ErrorsTotal.WithLabelValues(observability.StageAttribute).Inc()
		return res, fmt.Errorf("rewrite %s: %w", job.AttributePath, err)
	}
	if err = tmp.Sync(); err != nil {
		p.metrics.ErrorsTotal.WithLabelValues(observability.StageOutput).Inc()
		return res, fmt.Errorf("sync output: %w", err)
	}

	if job.Verify {
		if err = p.verify(in, tmp); err != nil {
			p.metrics.ErrorsTotal.WithLabelValues(observability.StageVerify).Inc()
			return res, err
		}
	}

	if err = tmp.Chmod(outputMode(in, job.OutputPath)); err != nil {
		p.metrics.ErrorsTotal.WithLabelValues(observability.StageOutput).Inc()
		return res, fmt.Errorf("chmod output: %w", err)
	}
	if err = tmp.Close(); err != nil {
		p.metrics.ErrorsTotal.WithLabelValues(observability.StageOutput).Inc()
		return res, fmt.Errorf("close output: %w", err)
	}
	if err = os.Rename(tmp.Name(), job.OutputPath); err != nil {
		p.metrics.ErrorsTotal.WithLabelValues(observability.StageOutput).Inc()
		return res, fmt.Errorf("rename output: %w", err)
	}
	return res, nil
}

// outputMode keeps the permissions of an existing output file, otherwise
// those of the input.
func outputMode(in *os.File, outputPath string) os.FileMode {
	if fi, err := os.Stat(outputPath); err == nil {
		return fi.Mode().Perm()
	}
	if fi, err := in.Stat(); err == nil {
		return fi.Mode().Perm()
	}
	return 0o644
}

// verify rewinds both files and checks the rewrite changed nothing outside
// the Manning's n records.
func (p *Pipeline) verify(in, out *os.File) error {
	if _, err := in.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("verify: rewind input: %w", err)
	}
	if _, err := out.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("verify: rewind output: %w", err)
	}

	c, err := fort13.Compare(in, out)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	if !c.OK() {
		for _, v := range c.Violations {
			p.logger.Error("verification violation", "detail", v)
		}
		return fmt.Errorf("verify: %d violations, first: %s", c.ViolationCount, c.Violations[0])
	}
	p.logger.Info("output verified", "lines", c.Lines, "records", c.Records, "changed", c.Changed)
	return nil
}

// publish hands the report to every sink. Sink failures are logged and
// counted; the edited file is already in place by now.
func (p *Pipeline) publish(ctx context.Context, report domain.Report) {
	for _, s := range p.sinks {
		if err := s.Publish(ctx, report); err != nil {
			p.logger.Warn("report sink failed", "sink", s.Name(), "error", err)
			p.metrics.ReportsPublished.WithLabelValues(s.Name(), "error").Inc()
			continue
		}
		p.metrics.ReportsPublished.WithLabelValues(s.Name(), "success").Inc()
	}
}
