// Package export writes derived dashboard views as CSV or newline-delimited
// JSON.
package export

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Supported formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// View is a named tabular result.
type View struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Writer streams views to an output.
type Writer interface {
	Write(View) error
	Close() error
}

// NewWriter returns the writer for format.
func NewWriter(format string, w io.Writer) (Writer, error) {
	switch strings.ToLower(format) {
	case FormatCSV:
		return NewCSVWriter(w), nil
	case FormatJSON:
		return NewJSONWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// ContentType returns the media type of format.
func ContentType(format string) string {
	if strings.ToLower(format) == FormatJSON {
		return "application/x-ndjson"
	}
	return "text/csv; charset=utf-8"
}

// Extension returns the file extension of format.
func Extension(format string) string {
	if strings.ToLower(format) == FormatJSON {
		return ".jsonl"
	}
	return ".csv"
}

// CSVWriter writes views as CSV, a header row followed by the records.
type CSVWriter struct {
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter wraps w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{writer: csv.NewWriter(w)}
}

// Write appends v with its header.
func (cw *CSVWriter) Write(v View) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if err := cw.writer.Write(v.Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range v.Rows {
		if err := cw.writer.Write(row); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// Close flushes pending records.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return nil
}

// JSONWriter writes one JSON object per row, keyed by the view header.
type JSONWriter struct {
	writer  *bufio.Writer
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONWriter wraps w.
func NewJSONWriter(w io.Writer) *JSONWriter {
	buffer := bufio.NewWriter(w)
	return &JSONWriter{
		writer:  buffer,
		encoder: json.NewEncoder(buffer),
	}
}

// Write appends the rows of v in JSONL format.
func (jw *JSONWriter) Write(v View) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	for _, row := range v.Rows {
		if len(row) != len(v.Header) {
			return fmt.Errorf("view %s: row has %d fields, header has %d", v.Name, len(row), len(v.Header))
		}
		if err := jw.encoder.Encode(record{fields: v.Header, values: row}); err != nil {
			return fmt.Errorf("encode json record: %w", err)
		}
	}

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return nil
}

// Close flushes buffered output.
func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return nil
}

// record encodes one row as a JSON object whose keys follow the header order.
type record struct {
	fields []string
	values []string
}

func (r record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// WriteDir writes each view to dir/<name><ext> and returns the paths.
func WriteDir(dir, format string, views []View) ([]string, error) {
	paths := make([]string, 0, len(views))
	for _, v := range views {
		path := filepath.Join(dir, v.Name+Extension(format))
		if err := writeFile(path, format, v); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path, format string, v View) (err error) {
	if err := ensureDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s file: %w", format, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	w, err := NewWriter(format, f)
	if err != nil {
		return err
	}
	if err := w.Write(v); err != nil {
		return err
	}
	return w.Close()
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
