// Package export writes loaded tables and PMI as Arrow IPC files.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"stepscan/internal/graph"
	"stepscan/internal/pmi"
)

// batchRows bounds the rows of one record batch.
const batchRows = 64 * 1024

// File names written by WriteDir, with the stem prefix.
const (
	EntitiesSuffix  = ".entities.arrow"
	PMISuffix       = ".pmi.arrow"
	PolylinesSuffix = ".polylines.arrow"
)

// batchWriter turns rows into record batches of one schema.
type batchWriter struct {
	w    *ipc.FileWriter
	b    *array.RecordBuilder
	rows int
}

func newBatchWriter(out io.Writer, schema *arrow.Schema) (*batchWriter, error) {
	pool := memory.NewGoAllocator()
	w, err := ipc.NewFileWriter(out, ipc.WithSchema(schema), ipc.WithAllocator(pool))
	if err != nil {
		return nil, fmt.Errorf("arrow writer: %w", err)
	}
	return &batchWriter{w: w, b: array.NewRecordBuilder(pool, schema)}, nil
}

// row is called after every appended row.
func (bw *batchWriter) row() error {
	bw.rows++
	if bw.rows < batchRows {
		return nil
	}
	return bw.flush()
}

func (bw *batchWriter) flush() error {
	if bw.rows == 0 {
		return nil
	}
	rec := bw.b.NewRecord()
	defer rec.Release()
	bw.rows = 0
	return bw.w.Write(rec)
}

func (bw *batchWriter) close() error {
	defer bw.b.Release()
	err := bw.flush()
	return errors.Join(err, bw.w.Close())
}

// WriteDir writes the three export files for one loaded file into dir and
// returns their paths. res may be nil, then only the entity file is written.
func WriteDir(dir, stem string, table *graph.Table, res *pmi.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	type job struct {
		suffix string
		write  func(io.Writer) error
	}
	jobs := []job{{EntitiesSuffix, func(w io.Writer) error { return WriteEntities(w, table) }}}
	if res != nil {
		jobs = append(jobs,
			job{PMISuffix, func(w io.Writer) error { return WritePMI(w, res) }},
			job{PolylinesSuffix, func(w io.Writer) error { return WritePolylines(w, res) }},
		)
	}

	paths := make([]string, 0, len(jobs))
	for _, j := range jobs {
		p := filepath.Join(dir, stem+j.suffix)
		if err := writeFile(p, j.write); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
