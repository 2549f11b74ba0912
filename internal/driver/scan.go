package driver

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stepscan/internal/diag"
	"stepscan/internal/fetch"
	"stepscan/internal/graph"
	"stepscan/internal/header"
	"stepscan/internal/logging"
	"stepscan/internal/parser"
	"stepscan/internal/pmi"
)

// Extensions lists the file extensions a directory walk picks up.
var Extensions = []string{".stp", ".step", ".p21"}

// Reader reads whole inputs; *fetch.Fetcher is the usual implementation.
type Reader interface {
	Read(ctx context.Context, uri string) ([]byte, error)
}

type ScanOptions struct {
	Load Options
	// Jobs bounds the number of files loaded at once; <= 0 means GOMAXPROCS.
	Jobs   int
	Cache  *ReportCache
	Reader Reader
	// RunID tags logs and reports; a random UUID when empty.
	RunID string
}

// Report is the per-file outcome of a scan.
type Report struct {
	RunID               string         `json:"run_id" msgpack:"run_id"`
	Path                string         `json:"path" msgpack:"path"`
	Digest              string         `json:"digest,omitempty" msgpack:"digest,omitempty"`
	Bytes               int            `json:"bytes" msgpack:"bytes"`
	Summary             header.Summary `json:"summary" msgpack:"summary"`
	Schemas             []string       `json:"schemas,omitempty" msgpack:"schemas,omitempty"`
	ImplementationLevel string         `json:"implementation_level,omitempty" msgpack:"implementation_level,omitempty"`
	PMI                 *pmi.Stats     `json:"pmi,omitempty" msgpack:"pmi,omitempty"`
	Errors              int            `json:"errors" msgpack:"errors"`
	Warnings            int            `json:"warnings" msgpack:"warnings"`
	Failed              bool           `json:"failed,omitempty" msgpack:"failed,omitempty"`
	Error               string         `json:"error,omitempty" msgpack:"error,omitempty"`
	Cached              bool           `json:"cached,omitempty" msgpack:"cached,omitempty"`
	DurationMS          float64        `json:"duration_ms" msgpack:"duration_ms"`
}

type ScanResult struct {
	RunID      string   `json:"run_id"`
	Reports    []Report `json:"reports"`
	Failed     int      `json:"failed"`
	CacheHits  int      `json:"cache_hits"`
	DurationMS float64  `json:"duration_ms"`
}

// ListInputs expands directories into the exchange files below them.
// s3:// URIs and plain files are kept as given. The result is sorted and
// free of duplicates.
func ListInputs(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if fetch.IsRemote(p) {
			out = append(out, p)
			continue
		}
		st, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !st.IsDir() {
			out = append(out, filepath.Clean(p))
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if slices.Contains(Extensions, strings.ToLower(filepath.Ext(path))) {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// Scan loads inputs in parallel and returns one report per input, in input
// order. A file that fails to load yields a failed report; only context
// cancellation aborts the scan.
func Scan(ctx context.Context, inputs []string, opts ScanOptions, sink ProgressSink) (*ScanResult, error) {
	if sink == nil {
		sink = nopSink{}
	}
	runID := opts.RunID
	if runID == "" {
		runID = uuid.New().String()
	}
	reader := opts.Reader
	if reader == nil {
		reader = fetch.New(fetch.Options{})
	}
	logger := logging.OrNop(opts.Load.Logger).With(zap.String("run_id", runID))
	start := time.Now()

	for _, in := range inputs {
		sink.OnEvent(Event{File: in, Status: StatusQueued})
	}

	s := &scanner{
		opts:   opts,
		runID:  runID,
		reader: reader,
		logger: logger,
		sink:   sink,
		memo:   newReportMemo(len(inputs)),
	}
	reports := make([]Report, len(inputs))

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(inputs))))
	for i, in := range inputs {
		g.Go(func() error {
			rep, err := s.scanOne(gctx, in)
			if err != nil {
				return err
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &ScanResult{
		RunID:      runID,
		Reports:    reports,
		DurationMS: durationMS(time.Since(start)),
	}
	for i := range reports {
		if reports[i].Failed {
			res.Failed++
		}
		if reports[i].Cached {
			res.CacheHits++
		}
	}
	logger.Info("scan finished",
		zap.Int("files", len(reports)),
		zap.Int("failed", res.Failed),
		zap.Int("cache_hits", res.CacheHits),
		zap.Float64("duration_ms", res.DurationMS))
	return res, nil
}

type scanner struct {
	opts   ScanOptions
	runID  string
	reader Reader
	logger *zap.Logger
	sink   ProgressSink
	memo   *reportMemo
}

func (s *scanner) scanOne(ctx context.Context, path string) (Report, error) {
	start := time.Now()
	m := s.opts.Load.Metrics
	logger := s.logger.With(zap.String("file", path))

	s.sink.OnEvent(Event{File: path, Stage: StageRead, Status: StatusWorking})
	content, err := s.reader.Read(ctx, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Report{}, ctxErr
		}
		logger.Warn("read failed", zap.Error(err))
		return s.failed(path, start, 0, err), nil
	}

	key := CacheKey(Digest(sha256.Sum256(content)), s.opts.Load)
	if rep, ok := s.lookup(key, logger); ok {
		rep.RunID = s.runID
		rep.Path = path
		rep.Cached = true
		rep.DurationMS = durationMS(time.Since(start))
		if m != nil {
			m.RecordLoad("cached", len(content), time.Since(start))
		}
		status := StatusDone
		if rep.Failed {
			status = StatusError
		}
		s.sink.OnEvent(Event{File: path, Status: status, Elapsed: time.Since(start)})
		return rep, nil
	}

	lo := s.opts.Load
	lo.Logger = logger
	lo.Observer = func(ev PhaseEvent) {
		if ev.Status != PhaseStart {
			return
		}
		if stage, ok := stageOf(ev.Name); ok {
			s.sink.OnEvent(Event{File: path, Stage: stage, Status: StatusWorking})
		}
	}
	doc, err := LoadBytes(ctx, path, content, lo)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Report{}, ctxErr
		}
		logger.Warn("load failed", zap.Error(err))
		rep := s.failed(path, start, len(content), err)
		rep.Digest = key.String()
		s.remember(key, rep, logger)
		return rep, nil
	}

	rep := newReport(doc)
	rep.RunID = s.runID
	rep.Path = path
	rep.Digest = key.String()
	rep.Bytes = len(content)
	rep.DurationMS = durationMS(time.Since(start))
	if m != nil {
		m.RecordLoad("ok", len(content), time.Since(start))
		m.EntitiesTotal.Add(float64(doc.Table.Len()))
		if doc.PMI != nil {
			for kind, n := range doc.PMI.Stats.Kinds {
				m.PMIRecordsTotal.WithLabelValues(kind).Add(float64(n))
			}
		}
		for _, sev := range diag.Severities {
			if n := doc.Bag.Count(sev); n > 0 {
				m.DiagnosticsTotal.WithLabelValues(sev.Label()).Add(float64(n))
			}
		}
	}
	s.remember(key, rep, logger)
	s.sink.OnEvent(Event{File: path, Status: StatusDone, Elapsed: time.Since(start)})
	return rep, nil
}

func (s *scanner) lookup(key Digest, logger *zap.Logger) (Report, bool) {
	if rep, ok := s.memo.get(key); ok {
		return rep, true
	}
	if s.opts.Cache == nil {
		return Report{}, false
	}
	var rep Report
	hit, err := s.opts.Cache.Get(key, &rep)
	if err != nil {
		logger.Warn("cache read failed", zap.Error(err))
	}
	if m := s.opts.Load.Metrics; m != nil {
		m.RecordCache(hit)
	}
	if hit {
		logger.Debug("cache hit", zap.Stringer("key", key))
	}
	return rep, hit
}

func (s *scanner) remember(key Digest, rep Report, logger *zap.Logger) {
	s.memo.put(key, rep)
	if err := s.opts.Cache.Put(key, &rep); err != nil {
		logger.Warn("cache write failed", zap.Error(err))
	}
}

func (s *scanner) failed(path string, start time.Time, size int, err error) Report {
	if m := s.opts.Load.Metrics; m != nil {
		m.RecordLoad("failed", size, time.Since(start))
	}
	s.sink.OnEvent(Event{File: path, Status: StatusError, Err: err, Elapsed: time.Since(start)})
	return Report{
		RunID:      s.runID,
		Path:       path,
		Bytes:      size,
		Failed:     true,
		Error:      failureText(path, err),
		DurationMS: durationMS(time.Since(start)),
	}
}

// failureText is err without the leading file name: a failed report may be
// reused for another input with the same content, and Path already names it.
func failureText(path string, err error) string {
	names := []string{path}
	var mre *parser.MalformedRecordError
	if errors.As(err, &mre) {
		names = append(names, mre.Path)
	}
	var dup *graph.DuplicateInstanceIDError
	if errors.As(err, &dup) {
		names = append(names, dup.Path)
	}
	msg := err.Error()
	for _, name := range names {
		if name == "" {
			continue
		}
		for _, prefix := range []string{"load " + name + ": ", name + ":"} {
			if rest, ok := strings.CutPrefix(msg, prefix); ok {
				return strings.TrimLeft(rest, " ")
			}
		}
	}
	return msg
}

func newReport(doc *Document) Report {
	rep := Report{
		Summary:  doc.Summary,
		Schemas:  doc.Header.Schemas(),
		Errors:   doc.Bag.Count(diag.SevError),
		Warnings: doc.Bag.Count(diag.SevWarning),
	}
	if d := doc.Header.Description; d != nil {
		rep.ImplementationLevel = d.Level.String()
	}
	if doc.PMI != nil {
		stats := doc.PMI.Stats
		rep.PMI = &stats
	}
	return rep
}

func durationMS(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// String renders a one-line summary of r.
func (r Report) String() string {
	if r.Failed {
		return fmt.Sprintf("%s: failed: %s", r.Path, r.Error)
	}
	pmiCount := 0
	if r.PMI != nil {
		pmiCount = r.PMI.Records
	}
	return fmt.Sprintf("%s: %d entities, %d PMI records, %d errors, %d warnings",
		r.Path, r.Summary.Entities, pmiCount, r.Errors, r.Warnings)
}
