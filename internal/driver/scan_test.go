package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"stepscan/internal/metrics"
	"stepscan/internal/parser"
)

func TestListInputs(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.stp", part)
	b := writeFile(t, dir, "b.STEP", part)
	d := writeFile(t, dir, filepath.Join("sub", "d.p21"), part)
	writeFile(t, dir, "notes.txt", "x")

	got, err := ListInputs([]string{dir, a, "s3://bucket/key.stp"})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b, d, "s3://bucket/key.stp"}, got)

	_, err = ListInputs([]string{filepath.Join(dir, "missing.stp")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type mapReader map[string]string

func (m mapReader) Read(_ context.Context, uri string) ([]byte, error) {
	s, ok := m[uri]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(s), nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func (s *recordingSink) final() map[string]Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Status)
	for _, ev := range s.events {
		if ev.Status == StatusDone || ev.Status == StatusError {
			out[ev.File] = ev.Status
		}
	}
	return out
}

func TestScan(t *testing.T) {
	reader := mapReader{
		"s3://parts/a.stp":    part,
		"s3://parts/copy.stp": part,
		"s3://parts/bad.stp":  unbalanced,
	}
	inputs := []string{"s3://parts/a.stp", "s3://parts/copy.stp", "s3://parts/bad.stp", "s3://parts/gone.stp"}
	m := metrics.New()
	cache, err := OpenReportCache(t.TempDir())
	require.NoError(t, err)

	opts := ScanOptions{Load: DefaultOptions(), Jobs: 1, Cache: cache, Reader: reader, RunID: "run-1"}
	opts.Load.Metrics = m
	sink := &recordingSink{}

	res, err := Scan(context.Background(), inputs, opts, sink)
	require.NoError(t, err)
	require.Len(t, res.Reports, 4)
	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, 1, res.CacheHits)

	first := res.Reports[0]
	assert.Equal(t, "s3://parts/a.stp", first.Path)
	assert.Equal(t, "run-1", first.RunID)
	assert.Equal(t, 3, first.Summary.Entities)
	assert.Equal(t, []string{"AUTOMOTIVE_DESIGN"}, first.Schemas)
	assert.Equal(t, "Edition 2 (min: 1)", first.ImplementationLevel)
	require.NotNil(t, first.PMI)
	assert.False(t, first.Cached)

	dup := res.Reports[1]
	assert.Equal(t, "s3://parts/copy.stp", dup.Path)
	assert.True(t, dup.Cached)
	assert.Equal(t, first.Digest, dup.Digest)

	bad := res.Reports[2]
	assert.True(t, bad.Failed)
	assert.Contains(t, bad.Error, "unbalanced")
	assert.NotEmpty(t, bad.Digest)

	gone := res.Reports[3]
	assert.True(t, gone.Failed)
	assert.Empty(t, gone.Digest)

	assert.Equal(t, map[string]Status{
		"s3://parts/a.stp":    StatusDone,
		"s3://parts/copy.stp": StatusDone,
		"s3://parts/bad.stp":  StatusError,
		"s3://parts/gone.stp": StatusError,
	}, sink.final())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesTotal.WithLabelValues("cached")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FilesTotal.WithLabelValues("failed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.EntitiesTotal))

	// a second run over the same cache loads nothing that was read before
	opts.RunID = ""
	res2, err := Scan(context.Background(), inputs[:3], opts, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res2.CacheHits)
	assert.NotEqual(t, "run-1", res2.RunID)
	assert.Equal(t, res2.RunID, res2.Reports[0].RunID)
	assert.Equal(t, first.Summary, res2.Reports[0].Summary)
	assert.True(t, res2.Reports[2].Failed)
}

func TestScanParallelKeepsInputOrder(t *testing.T) {
	reader := mapReader{}
	var inputs []string
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		uri := "s3://parts/" + name + ".stp"
		reader[uri] = strings.Replace(part, "bracket", name, 1)
		inputs = append(inputs, uri)
	}
	res, err := Scan(context.Background(), inputs, ScanOptions{Load: DefaultOptions(), Jobs: 4, Reader: reader}, nil)
	require.NoError(t, err)
	for i, rep := range res.Reports {
		assert.Equal(t, inputs[i], rep.Path)
		assert.False(t, rep.Failed)
	}
}

type cancelReader struct{ cancel context.CancelFunc }

func (r cancelReader) Read(ctx context.Context, _ string) ([]byte, error) {
	r.cancel()
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestSharedFailureNamesOwnFile(t *testing.T) {
	reader := mapReader{
		"s3://parts/bad.stp":  unbalanced,
		"s3://parts/same.stp": unbalanced,
	}
	inputs := []string{"s3://parts/bad.stp", "s3://parts/same.stp"}
	cache, err := OpenReportCache(t.TempDir())
	require.NoError(t, err)
	opts := ScanOptions{Load: DefaultOptions(), Jobs: 1, Cache: cache, Reader: reader}

	res, err := Scan(context.Background(), inputs, opts, nil)
	require.NoError(t, err)
	require.Len(t, res.Reports, 2)
	first, second := res.Reports[0], res.Reports[1]
	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	for _, rep := range res.Reports {
		assert.True(t, rep.Failed)
		assert.Contains(t, rep.Error, "unbalanced")
		assert.NotContains(t, rep.Error, "s3://")
	}
	assert.Equal(t, first.Error, second.Error)
	assert.True(t, strings.HasPrefix(second.String(), "s3://parts/same.stp: failed: "), second.String())
	assert.NotContains(t, second.String(), "bad.stp")

	// с диска: порядок обратный, текст тот же
	res, err = Scan(context.Background(), []string{"s3://parts/same.stp", "s3://parts/bad.stp"}, opts, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.CacheHits)
	assert.NotContains(t, res.Reports[1].String(), "same.stp")
}

func TestFailureText(t *testing.T) {
	err := &parser.MalformedRecordError{Path: "dir/a.stp", Line: 3, Column: 1, Reason: "missing '='"}
	assert.Equal(t, "3:1: malformed exchange structure: missing '=' (offset 0)", failureText("./dir/a.stp", err))
	assert.Equal(t, "boom", failureText("a.stp", errors.New("boom")))
	assert.Equal(t, "file too large", failureText("a.stp", errors.New("load a.stp: file too large")))
}

func TestScanCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	res, err := Scan(ctx, []string{"a.stp", "b.stp"}, ScanOptions{Load: DefaultOptions(), Reader: cancelReader{cancel}}, nil)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestReportCache(t *testing.T) {
	cache, err := OpenReportCache(t.TempDir())
	require.NoError(t, err)

	key := CacheKey(Digest{1, 2, 3}, DefaultOptions())
	var got Report
	hit, err := cache.Get(key, &got)
	require.NoError(t, err)
	assert.False(t, hit)

	rep := Report{Path: "a.stp", Bytes: 42, Errors: 1, Schemas: []string{"AP214"}}
	require.NoError(t, cache.Put(key, &rep))
	hit, err = cache.Get(key, &got)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, rep, got)

	// только один файл отчёта, временные удалены
	entries, err := os.ReadDir(filepath.Dir(cache.pathFor(key)))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, cache.DropAll())
	hit, err = cache.Get(key, &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestReportCacheSchemaMismatch(t *testing.T) {
	cache, err := OpenReportCache(t.TempDir())
	require.NoError(t, err)
	key := Digest{9}
	p := cache.pathFor(key)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	data, err := msgpack.Marshal(&cachePayload{Schema: reportSchemaVersion + 1, Report: Report{Path: "old"}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(p, data, 0o600))

	var got Report
	hit, err := cache.Get(key, &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestNilReportCache(t *testing.T) {
	var cache *ReportCache
	require.NoError(t, cache.Put(Digest{}, &Report{}))
	hit, err := cache.Get(Digest{}, &Report{})
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheKeyDependsOnOptions(t *testing.T) {
	content := Digest{7}
	base := DefaultOptions()
	strict := base
	strict.SkipBadEntities = false
	shallow := base
	shallow.MaxDepth = 8

	k := CacheKey(content, base)
	assert.Equal(t, k, CacheKey(content, base))
	assert.NotEqual(t, k, CacheKey(content, strict))
	assert.NotEqual(t, k, CacheKey(content, shallow))
	assert.NotEqual(t, k, CacheKey(Digest{8}, base))

	// логгер и метрики не влияют на отчёт
	withMetrics := base
	withMetrics.Metrics = metrics.New()
	assert.Equal(t, k, CacheKey(content, withMetrics))
}

func TestChannelSink(t *testing.T) {
	ch := make(chan Event, 1)
	ChannelSink{Ch: ch}.OnEvent(Event{File: "a", Status: StatusDone})
	assert.Equal(t, "a", (<-ch).File)
	ChannelSink{}.OnEvent(Event{})
}
