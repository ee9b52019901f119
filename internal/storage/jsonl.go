package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"transferScope/internal/model"
)

// Stdout is the path that selects standard output.
const Stdout = "-"

// JsonlSink writes transfers and decode errors as JSON lines.
// Transfers are flushed per line so downstream readers see them immediately.
type JsonlSink struct {
	mu     sync.Mutex
	out    *jsonlWriter
	errors *jsonlWriter
}

// NewJsonlSink opens out for transfers and, when errorsPath is not empty,
// errorsPath for decode errors. Either path may be "-" for stdout.
func NewJsonlSink(out, errorsPath string) (*JsonlSink, error) {
	outWriter, err := openJSONL(out)
	if err != nil {
		return nil, err
	}
	sink := &JsonlSink{out: outWriter}

	if errorsPath != "" {
		errWriter, err := openJSONL(errorsPath)
		if err != nil {
			outWriter.Close()
			return nil, err
		}
		sink.errors = errWriter
	}
	return sink, nil
}

// NewJsonlSinkWriter builds a sink over already open writers. errs may be nil.
func NewJsonlSinkWriter(out, errs io.Writer) *JsonlSink {
	sink := &JsonlSink{out: newJSONLWriter(out, nil)}
	if errs != nil {
		sink.errors = newJSONLWriter(errs, nil)
	}
	return sink
}

// PutTransfer appends one transfer record.
func (s *JsonlSink) PutTransfer(event model.TransferEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.out.Write(event.Record()); err != nil {
		return fmt.Errorf("write transfer: %w", err)
	}
	return s.out.Flush()
}

// PutDecodeError appends one decode error record. Without an errors output it is a no-op.
func (s *JsonlSink) PutDecodeError(rec model.DecodeError) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.errors == nil {
		return nil
	}
	if err := s.errors.Write(rec); err != nil {
		return fmt.Errorf("write decode error: %w", err)
	}
	return s.errors.Flush()
}

// Close flushes and closes both outputs.
func (s *JsonlSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.out.Close()
	if s.errors != nil {
		if cerr := s.errors.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

type jsonlWriter struct {
	closer io.Closer
	writer *bufio.Writer
}

func newJSONLWriter(w io.Writer, closer io.Closer) *jsonlWriter {
	return &jsonlWriter{closer: closer, writer: bufio.NewWriter(w)}
}

func openJSONL(path string) (*jsonlWriter, error) {
	if path == Stdout {
		return newJSONLWriter(os.Stdout, nil), nil
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output file: %w", err)
	}
	return newJSONLWriter(file, file), nil
}

func (w *jsonlWriter) Write(value interface{}) error {
	line, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if _, err := w.writer.Write(line); err != nil {
		return err
	}
	return w.writer.WriteByte('\n')
}

func (w *jsonlWriter) Flush() error {
	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

func (w *jsonlWriter) Close() error {
	err := w.writer.Flush()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
