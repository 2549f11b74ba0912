package graph

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"stepscan/internal/diag"
	"stepscan/internal/parser"
	"stepscan/internal/source"
	"stepscan/internal/value"
)

// batchSize records per worker task; a single record is too small a unit.
const batchSize = 512

type Options struct {
	// Jobs bounds parallel attribute parsing; <= 0 means GOMAXPROCS.
	Jobs int
	// MaxDepth is passed to the value parser.
	MaxDepth int
	// SkipBadEntities drops records whose attributes do not parse and reports
	// them. When false the first such record aborts Build.
	SkipBadEntities bool
	Reporter        diag.Reporter
}

type parsed struct {
	parts []string
	attrs []value.Value
	err   error
}

// Build parses the attributes of every DATA record and fills a Table.
//
// Duplicate ids fail with *DuplicateInstanceIDError before any parsing.
// Attribute lists are parsed in parallel, but the table, the diagnostics and
// the returned error are the same as for a sequential run.
func Build(ctx context.Context, file *source.File, records []parser.RawRecord, opts Options) (*Table, error) {
	if err := checkDuplicates(file, records); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results, err := parseAll(ctx, file, records, opts)
	if err != nil {
		return nil, err
	}

	names := source.NewInterner()
	table := newTable(file, len(records))
	skipped := 0
	for i := range records {
		rec := &records[i]
		res := &results[i]
		if res.err != nil {
			var ape *value.AttributeParseError
			if errors.As(res.err, &ape) {
				ape.ID = rec.ID
			}
			if !opts.SkipBadEntities {
				return nil, res.err
			}
			skipped++
			reportSkipped(opts.Reporter, file, rec, ape)
			continue
		}

		e := &Entity{
			ID:    rec.ID,
			Type:  names.Canonical(rec.TypeName),
			Attrs: res.attrs,
			Span:  rec.Span,
		}
		if rec.Complex {
			e.Parts = make([]string, len(res.parts))
			for j, p := range res.parts {
				e.Parts[j] = names.Canonical(p)
			}
			e.Type = e.Parts[0]
		}
		table.add(e)
	}

	if skipped > 0 && opts.Reporter != nil {
		diag.ReportWarning(opts.Reporter, diag.GraphSkippedEntity, source.Span{File: file.ID},
			fmt.Sprintf("%d of %d entities skipped because their attributes do not parse", skipped, len(records))).Emit()
	}
	return table, nil
}

func checkDuplicates(file *source.File, records []parser.RawRecord) error {
	first := make(map[uint64]int, len(records))
	for i := range records {
		id := records[i].ID
		j, dup := first[id]
		if !dup {
			first[id] = i
			continue
		}
		return &DuplicateInstanceIDError{
			Path:       file.Path,
			ID:         id,
			First:      records[j].Span,
			Second:     records[i].Span,
			FirstLine:  file.Position(records[j].Span.Start).Line,
			SecondLine: file.Position(records[i].Span.Start).Line,
		}
	}
	return nil
}

// parseAll разбирает атрибуты пачками; индексы пачек не пересекаются, мьютекс не нужен.
func parseAll(ctx context.Context, file *source.File, records []parser.RawRecord, opts Options) ([]parsed, error) {
	results := make([]parsed, len(records))
	if len(records) == 0 {
		return results, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	batches := (len(records) + batchSize - 1) / batchSize

	vopts := value.Options{MaxDepth: opts.MaxDepth}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, batches))

	for b := 0; b < batches; b++ {
		lo := b * batchSize
		hi := min(lo+batchSize, len(records))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if (i-lo)%64 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				results[i] = parseRecord(file, &records[i], vopts)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// errgroup отменяет свой gctx после Wait, поэтому внешний ctx проверяем отдельно
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func parseRecord(file *source.File, rec *parser.RawRecord, opts value.Options) parsed {
	if !rec.Complex {
		attrs, err := value.Parse(file, rec.ArgsSpan, opts)
		return parsed{attrs: attrs, err: err}
	}
	parts, err := value.ParseComplex(file, rec.ArgsSpan, opts)
	if err != nil {
		return parsed{err: err}
	}
	names := make([]string, len(parts))
	for i := range parts {
		names[i] = parts[i].Text
	}
	return parsed{parts: names, attrs: parts}
}

func reportSkipped(r diag.Reporter, file *source.File, rec *parser.RawRecord, ape *value.AttributeParseError) {
	if r == nil {
		return
	}
	code := diag.AttrParseFailed
	reason := "attributes do not parse"
	at := rec.Span
	if ape != nil {
		reason = ape.Reason
		if ape.TooDeep {
			code = diag.AttrTooDeep
		}
		if ape.Offset >= rec.Span.Start && ape.Offset < rec.Span.End {
			at = source.Span{File: file.ID, Start: ape.Offset, End: ape.Offset + 1}
		}
	}
	diag.ReportWarning(r, code, at, fmt.Sprintf("entity #%d (%s) skipped: %s", rec.ID, rec.TypeName, reason)).
		WithNote(rec.Span, "record defined here").
		Emit()
}
