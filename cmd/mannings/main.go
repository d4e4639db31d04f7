// Command mannings edits the Manning's n per-node block of an ADCIRC
// fort.13 file, selecting nodes by their position and depth in the
// companion fort.14 mesh.
//
// Usage:
//
//	mannings [flags] <fort13> <fort14>
//
// The result is written to <fort13>.modified unless -o is given, and the
// number of modified nodes is printed to stdout. Logging, metrics and run
// reports are configured through environment variables (LOG_LEVEL,
// LOG_FORMAT, METRICS_FILE, REPORT_FILE, KAFKA_BROKERS, KAFKA_REPORT_TOPIC).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/mannings-editor/internal/adapter/fort13"
	"github.com/couchcryptid/mannings-editor/internal/adapter/fort14"
	kafkaadapter "github.com/couchcryptid/mannings-editor/internal/adapter/kafka"
	"github.com/couchcryptid/mannings-editor/internal/adapter/reportfile"
	"github.com/couchcryptid/mannings-editor/internal/config"
	"github.com/couchcryptid/mannings-editor/internal/domain"
	"github.com/couchcryptid/mannings-editor/internal/observability"
	"github.com/couchcryptid/mannings-editor/internal/pipeline"
	"github.com/fatih/color"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var errUsage = errors.New("usage")

type options struct {
	attributePath string
	meshPath      string
	outputPath    string
	criterion     int
	modifier      int
	factor        float64
	criteriaFile  string
	where         string
	seed          uint64
	verify        bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "mannings: %v\n", err)
		if errors.Is(err, errUsage) {
			return exitUsage
		}
		return exitError
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "mannings: load config: %v\n", err)
		return exitError
	}
	logger := observability.NewLogger(cfg)

	job, err := buildJob(opts)
	if err != nil {
		fmt.Fprintf(stderr, "mannings: %v\n", err)
		return exitError
	}

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	var sinks []pipeline.ReportSink
	if cfg.ReportFile != "" {
		sinks = append(sinks, reportfile.NewSink(cfg.ReportFile))
	}
	if cfg.KafkaReportEnabled {
		publisher := kafkaadapter.NewPublisher(cfg, logger)
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Error("kafka publisher close error", "error", err)
			}
		}()
		sinks = append(sinks, publisher)
		logger.Info("kafka reports enabled", "topic", cfg.KafkaReportTopic)
	}

	p := pipeline.New(
		fort14.NewLoader(logger),
		fort13.NewRewriter(logger),
		sinks,
		logger,
		metrics,
		clockwork.NewRealClock(),
	)
	report, runErr := p.Run(ctx, job)

	if cfg.MetricsFile != "" {
		if err := observability.WriteTextfile(cfg.MetricsFile, reg); err != nil {
			logger.Error("metrics export failed", "error", err)
		}
	}

	if runErr != nil {
		logger.Error("edit failed", "error", runErr)
		fmt.Fprintf(stderr, "mannings: %v\n", runErr)
		return exitError
	}

	fmt.Fprintf(stdout, "Modified %s nodes.\n", color.GreenString("%d", report.Modified))
	return exitOK
}

// parseArgs reads flags and the two positional paths. Flags may appear on
// either side of the positionals.
func parseArgs(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("mannings", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&opts.criterion, "criteria", 1, "node selection: (1) Galveston Bay box, (2) box AND at or above NAVD")
	fs.IntVar(&opts.modifier, "modifier", 1, "new value: (1) random in [0.02, 0.2], (2) old value times -factor")
	fs.Float64Var(&opts.factor, "factor", 5.0, "multiplier used by -modifier 2")
	fs.StringVar(&opts.outputPath, "o", "", "output file (default <fort13>.modified)")
	fs.StringVar(&opts.criteriaFile, "criteria-file", "", "INI file overriding the box ([box] xmin xmax ymin ymax) and NAVD ([datum] navd)")
	fs.StringVar(&opts.where, "where", "", "expression over node, x, y, depth, elevation that edited nodes must also satisfy")
	fs.Uint64Var(&opts.seed, "seed", 0, "random seed for -modifier 1 (0 picks one)")
	fs.BoolVar(&opts.verify, "verify", false, "re-read input and output and fail if anything outside the edited records changed")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: mannings [flags] <fort13> <fort14>")
		fs.PrintDefaults()
	}

	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return opts, err
			}
			return opts, fmt.Errorf("%w: %v", errUsage, err)
		}
		rest := fs.Args()
		if len(rest) == 0 {
			break
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}

	if len(positional) != 2 {
		fs.Usage()
		return opts, fmt.Errorf("%w: want <fort13> <fort14>, got %d paths", errUsage, len(positional))
	}
	if opts.criterion != 1 && opts.criterion != 2 {
		return opts, fmt.Errorf("%w: -criteria must be 1 or 2, got %d", errUsage, opts.criterion)
	}
	if opts.modifier != 1 && opts.modifier != 2 {
		return opts, fmt.Errorf("%w: -modifier must be 1 or 2, got %d", errUsage, opts.modifier)
	}

	opts.attributePath, opts.meshPath = positional[0], positional[1]
	if opts.outputPath == "" {
		opts.outputPath = opts.attributePath + ".modified"
	}
	return opts, nil
}

// buildJob resolves criteria, expression and modifier choices into a Job.
func buildJob(opts options) (domain.Job, error) {
	criteria, err := config.LoadCriteria(opts.criteriaFile)
	if err != nil {
		return domain.Job{}, err
	}

	pred, predDesc, err := domain.SelectCriterion(opts.criterion, criteria.Box, criteria.NAVD)
	if err != nil {
		return domain.Job{}, err
	}
	if opts.where != "" {
		extra, err := domain.CompileWhere(opts.where)
		if err != nil {
			return domain.Job{}, err
		}
		pred = domain.And(pred, extra)
		predDesc += " and " + opts.where
	}

	seed := opts.seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	mod, modDesc, err := domain.SelectModifier(opts.modifier, opts.factor, rand.New(rand.NewPCG(seed, seed)))
	if err != nil {
		return domain.Job{}, err
	}
	if opts.modifier == 1 {
		modDesc += fmt.Sprintf(" seed %d", seed)
	}

	return domain.Job{
		AttributePath:        opts.attributePath,
		MeshPath:             opts.meshPath,
		OutputPath:           opts.outputPath,
		Criterion:            pred,
		CriterionDescription: predDesc,
		Modifier:             mod,
		ModifierDescription:  modDesc,
		Verify:               opts.verify,
	}, nil
}
