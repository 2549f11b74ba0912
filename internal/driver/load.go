package driver

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"stepscan/internal/diag"
	"stepscan/internal/graph"
	"stepscan/internal/header"
	"stepscan/internal/logging"
	"stepscan/internal/metrics"
	"stepscan/internal/observ"
	"stepscan/internal/parser"
	"stepscan/internal/pmi"
	"stepscan/internal/source"
)

type Options struct {
	MaxDiagnostics int
	// MaxDepth bounds list nesting in attribute values.
	MaxDepth int
	// Jobs is the attribute parse fan-out; <= 0 means GOMAXPROCS.
	Jobs int
	// SkipBadEntities drops entities whose attributes fail to parse
	// instead of failing the load.
	SkipBadEntities bool
	// SkipPMI leaves Document.PMI nil.
	SkipPMI bool

	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Observer PhaseObserver
}

func DefaultOptions() Options {
	return Options{
		MaxDiagnostics:  100,
		MaxDepth:        256,
		SkipBadEntities: true,
	}
}

// Document is everything one load produces. All fields are read-only
// after Load returns.
type Document struct {
	FileSet  *source.FileSet
	File     *source.File
	Exchange *parser.Exchange
	Header   *header.Info
	Table    *graph.Table
	Summary  header.Summary
	PMI      *pmi.Result
	Bag      *diag.Bag
	Timing   observ.Report
}

// Load reads and loads one exchange file from disk.
func Load(ctx context.Context, path string, opts Options) (*Document, error) {
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return LoadFile(ctx, fs, id, opts)
}

// LoadBytes loads content as a file named name. The content is normalized
// like a file read from disk.
func LoadBytes(ctx context.Context, name string, content []byte, opts Options) (*Document, error) {
	fs := source.NewFileSet()
	id, err := fs.AddBytes(name, content, 0)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return LoadFile(ctx, fs, id, opts)
}

// LoadFile runs the load phases over a file already in fs. Structural
// errors (*parser.MalformedRecordError, *graph.DuplicateInstanceIDError,
// *value.AttributeParseError in strict mode) abort the load and are
// returned as is.
func LoadFile(ctx context.Context, fs *source.FileSet, id source.FileID, opts Options) (*Document, error) {
	file := fs.Get(id)
	logger := logging.OrNop(opts.Logger).With(zap.String("file", file.Path))
	bag := diag.NewBag(opts.MaxDiagnostics)
	reporter := diag.BagReporter{Bag: bag}
	timer := observ.NewTimer()
	doc := &Document{FileSet: fs, File: file, Bag: bag}

	run := func(name string, fn func() (string, error)) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if opts.Observer != nil {
			opts.Observer(PhaseEvent{Name: name, Status: PhaseStart})
		}
		idx := timer.Begin(name)
		note, err := fn()
		timer.End(idx, note)
		elapsed := timer.Duration(idx)
		if opts.Observer != nil {
			opts.Observer(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: elapsed})
		}
		if opts.Metrics != nil {
			opts.Metrics.PhaseDuration.WithLabelValues(name).Observe(elapsed.Seconds())
		}
		logger.Debug("phase finished",
			zap.String("phase", name),
			zap.Duration("elapsed", elapsed),
			zap.String("note", note),
			zap.Error(err))
		return err
	}

	err := run(PhaseRecords, func() (string, error) {
		x, err := parser.ParseFile(ctx, file, parser.Options{Reporter: reporter})
		if err != nil {
			return "", err
		}
		doc.Exchange = x
		return fmt.Sprintf("%d data records", len(x.Data)), nil
	})
	if err != nil {
		return nil, err
	}

	err = run(PhaseAttributes, func() (string, error) {
		table, err := graph.Build(ctx, file, doc.Exchange.Data, graph.Options{
			Jobs:            opts.Jobs,
			MaxDepth:        opts.MaxDepth,
			SkipBadEntities: opts.SkipBadEntities,
			Reporter:        reporter,
		})
		if err != nil {
			return "", err
		}
		doc.Table = table
		return fmt.Sprintf("%d entities", table.Len()), nil
	})
	if err != nil {
		return nil, err
	}

	err = run(PhaseHeader, func() (string, error) {
		doc.Header = header.Classify(doc.Exchange, file, reporter)
		doc.Summary = header.Summarize(doc.Exchange, doc.Table)
		return "", nil
	})
	if err != nil {
		return nil, err
	}

	if !opts.SkipPMI {
		err = run(PhasePMI, func() (string, error) {
			doc.PMI = pmi.Extract(doc.Table)
			pmi.Diagnose(doc.PMI, doc.Table, reporter)
			return fmt.Sprintf("%d records, %d polylines", len(doc.PMI.Records), len(doc.PMI.Polylines)), nil
		})
		if err != nil {
			return nil, err
		}
	}

	bag.Sort()
	doc.Timing = timer.Report()
	logger.Info("file loaded",
		zap.Int("entities", doc.Table.Len()),
		zap.Int("diagnostics", bag.Len()),
		zap.Float64("total_ms", doc.Timing.TotalMS))
	return doc, nil
}
