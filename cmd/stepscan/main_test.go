package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stepscan/internal/driver"
	"stepscan/internal/export"
)

const part = `ISO-10303-21;
HEADER;
FILE_DESCRIPTION(('bracket'),'2;1');
FILE_NAME('bracket.stp','2024-01-15T10:30:00',('author'),('org'),'pre 1.0','sys','');
FILE_SCHEMA(('AUTOMOTIVE_DESIGN'));
ENDSEC;
DATA;
#1 = CARTESIAN_POINT('',(0.,0.,0.));
#2 = DIRECTION('',(0.,0.,1.));
#3 = VECTOR('',#2,10.);
ENDSEC;
END-ISO-10303-21;
`

const broken = `ISO-10303-21;
DATA;
#1 = CARTESIAN_POINT('',(0.,0.,0.);
ENDSEC;
END-ISO-10303-21;
`

type fixture struct {
	dir    string
	config string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "stepscan.toml")
	body := "[log]\nlevel = \"error\"\n\n[cache]\ndir = \"" + filepath.ToSlash(filepath.Join(dir, "cache")) + "\"\n"
	require.NoError(t, os.WriteFile(cfg, []byte(body), 0o600))
	return fixture{dir: dir, config: cfg}
}

func (f fixture) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// run executes the CLI and returns stdout, stderr and the exit status.
func (f fixture) run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	root, a := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", f.config, "--color", "off"}, args...))
	err := root.Execute()
	a.close()
	code := 0
	if err != nil {
		code = exitCodeQuiet(err)
	}
	return stdout.String(), stderr.String(), code
}

func exitCodeQuiet(err error) int {
	var ue usageError
	if errors.As(err, &ue) {
		return 2
	}
	return 1
}

func TestHeaderCommand(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "bracket.stp", part)

	out, _, code := f.run(t, "header", path)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "FILE_SCHEMA AUTOMOTIVE_DESIGN")
	assert.Contains(t, out, "3 entities")

	out, _, code = f.run(t, "header", "--format", "json", path)
	require.Equal(t, 0, code)
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Contains(t, payload, "header")
	assert.Contains(t, payload, "summary")
}

func TestEntitiesCommand(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "bracket.stp", part)

	out, _, code := f.run(t, "--quiet", "entities", path)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "#3 = VECTOR('',#2,10.);")

	out, _, code = f.run(t, "entities", "--type", "direction,vector", "--format", "json", path)
	require.Equal(t, 0, code)
	var listed []struct {
		ID   uint64 `json:"id"`
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, uint64(2), listed[0].ID)
	assert.Equal(t, "VECTOR", listed[1].Type)

	out, _, code = f.run(t, "entities", "--resolve", "2", "--expect", "direction", path)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "#2 = DIRECTION")

	_, _, code = f.run(t, "entities", "--resolve", "2", "--expect", "VECTOR", path)
	assert.Equal(t, 1, code)
	_, _, code = f.run(t, "entities", "--resolve", "99", path)
	assert.Equal(t, 1, code)
}

func TestLoadFailureExitsOne(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "broken.stp", broken)
	_, _, code := f.run(t, "header", path)
	assert.Equal(t, 1, code)
	_, _, code = f.run(t, "header", filepath.Join(f.dir, "missing.stp"))
	assert.Equal(t, 1, code)
}

func TestUsageErrorsExitTwo(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "bracket.stp", part)

	cases := [][]string{
		{"header"},
		{"header", "--format", "yaml", path},
		{"header", "--no-such-flag", path},
		{"--color", "sometimes", "header", path},
		{"entities", "--expect", "VECTOR", path},
		{"export", path},
		{"scan", "--ui", "maybe", path},
		{"frobnicate"},
	}
	for _, args := range cases {
		_, _, code := f.run(t, args...)
		assert.Equal(t, 2, code, "%v", args)
	}
}

func TestPMICommand(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "bracket.stp", part)

	out, _, code := f.run(t, "pmi", "--groups", path)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Semantic PMI: 0 records")
	assert.Contains(t, out, "Groups: 0")

	out, _, code = f.run(t, "pmi", "--format", "json", path)
	require.Equal(t, 0, code)
	assert.True(t, json.Valid([]byte(out)))
}

func TestScanCommand(t *testing.T) {
	f := newFixture(t)
	f.write(t, "parts/a.stp", part)
	f.write(t, "parts/b.step", part)
	f.write(t, "parts/notes.txt", "not an exchange file")

	out, _, code := f.run(t, "--jobs", "1", "scan", "--ui", "off", "--format", "json", "--run-id", "run-1", filepath.Join(f.dir, "parts"))
	require.Equal(t, 0, code)
	var res driver.ScanResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "run-1", res.RunID)
	require.Len(t, res.Reports, 2)
	assert.Equal(t, 3, res.Reports[0].Summary.Entities)
	// одинаковое содержимое: второй отчёт берётся из памяти прогона
	assert.Equal(t, 1, res.CacheHits)

	out, _, code = f.run(t, "scan", "--ui", "off", filepath.Join(f.dir, "parts"))
	require.Equal(t, 0, code)
	assert.Contains(t, out, "2 files, 0 failed, 2 from cache")

	f.write(t, "parts/c.p21", broken)
	metricsPath := filepath.Join(f.dir, "scan.prom")
	out, _, code = f.run(t, "scan", "--ui", "off", "--no-pmi", "--metrics-textfile", metricsPath, filepath.Join(f.dir, "parts"))
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "failed")
	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "stepscan_files_total")
}

func TestScanWithoutInputs(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.MkdirAll(filepath.Join(f.dir, "empty"), 0o755))
	_, _, code := f.run(t, "scan", "--ui", "off", filepath.Join(f.dir, "empty"))
	assert.Equal(t, 1, code)
}

func TestExportCommand(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "bracket.stp", part)
	outDir := filepath.Join(f.dir, "arrow")

	out, _, code := f.run(t, "export", "--out", outDir, path)
	require.Equal(t, 0, code)
	for _, suffix := range []string{export.EntitiesSuffix, export.PMISuffix, export.PolylinesSuffix} {
		p := filepath.Join(outDir, "bracket"+suffix)
		assert.FileExists(t, p)
		assert.Contains(t, out, p)
	}
}

func TestTokenizeCommand(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "bracket.stp", part)
	out, _, code := f.run(t, "tokenize", "--format", "json", path)
	require.Equal(t, 0, code)
	assert.True(t, json.Valid([]byte(out)))
	assert.Contains(t, out, "CARTESIAN_POINT")
}

func TestVersionCommand(t *testing.T) {
	f := newFixture(t)
	out, _, code := f.run(t, "version", "--format", "json", "--hash")
	require.Equal(t, 0, code)
	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "stepscan", payload["tool"])
	assert.Equal(t, "unknown", payload["git_commit"])
	assert.NotContains(t, payload, "build_date")

	out, _, code = f.run(t, "version")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "stepscan ")
}

func TestExportStem(t *testing.T) {
	assert.Equal(t, "bracket", exportStem("/tmp/parts/bracket.stp"))
	assert.Equal(t, "gear.v2", exportStem("s3://bucket/models/gear.v2.step"))
	assert.Equal(t, "plain", exportStem("plain"))
}
