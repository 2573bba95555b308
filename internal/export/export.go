// Package export writes benchmark timings as Apache Arrow IPC streams so
// runs can be loaded into dataframe tooling without a custom parser.
//
// Each series becomes one float64 column, in the order the series were
// added; row i holds trial i of every series.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/born-ml/gradbench/internal/bench"
)

var (
	// ErrRaggedSeries is returned when series differ in sample count and
	// cannot share a record batch.
	ErrRaggedSeries = errors.New("export: series have different lengths")

	// ErrColumnType is returned when a stream column is not float64.
	ErrColumnType = errors.New("export: column is not float64")
)

// Schema returns the Arrow schema for the series names of t.
func Schema(t *bench.Timings) *arrow.Schema {
	names := t.Names()
	fields := make([]arrow.Field, len(names))
	for i, name := range names {
		fields[i] = arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Float64}
	}
	return arrow.NewSchema(fields, nil)
}

// WriteTimings writes t to w as a single-batch Arrow IPC stream.
func WriteTimings(w io.Writer, t *bench.Timings) error {
	names := t.Names()
	rows := -1
	for _, name := range names {
		samples, _ := t.Get(name)
		if rows >= 0 && len(samples) != rows {
			return fmt.Errorf("%w: %q has %d samples, want %d", ErrRaggedSeries, name, len(samples), rows)
		}
		rows = len(samples)
	}

	mem := memory.NewGoAllocator()
	schema := Schema(t)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	for i, name := range names {
		samples, _ := t.Get(name)
		b.Field(i).(*array.Float64Builder).AppendValues(samples, nil)
	}
	rec := b.NewRecord()
	defer rec.Release()

	wr := ipc.NewWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err := wr.Write(rec); err != nil {
		_ = wr.Close()
		return fmt.Errorf("write record: %w", err)
	}
	if err := wr.Close(); err != nil {
		return fmt.Errorf("close ipc writer: %w", err)
	}
	return nil
}

// WriteFile writes t to the file at path, replacing it.
func WriteFile(path string, t *bench.Timings) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteTimings(f, t); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadTimings reads a stream written by WriteTimings. Rows of every
// record batch are concatenated.
func ReadTimings(r io.Reader) (*bench.Timings, error) {
	rdr, err := ipc.NewReader(r, ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, fmt.Errorf("open ipc reader: %w", err)
	}
	defer rdr.Release()

	schema := rdr.Schema()
	columns := make([][]float64, schema.NumFields())
	for i := range columns {
		columns[i] = []float64{}
	}

	for rdr.Next() {
		rec := rdr.Record()
		for i := range columns {
			col, ok := rec.Column(i).(*array.Float64)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrColumnType, schema.Field(i).Name)
			}
			columns[i] = append(columns[i], col.Float64Values()...)
		}
	}
	if err := rdr.Err(); err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}

	t := bench.NewTimings()
	for i, f := range schema.Fields() {
		t.Add(f.Name, columns[i])
	}
	return t, nil
}
