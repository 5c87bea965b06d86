package ocptv

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/roach88/ocptv/internal/emitter"
)

// Writer receives one JSON line per artifact, without a trailing newline.
type Writer = emitter.Writer

var (
	defaultMu     sync.RWMutex
	defaultWriter Writer = StdoutWriter()
)

// ConfigOutput replaces the process-wide default Writer.
//
// Runs capture the default when they are created; changing it does not
// redirect runs that already exist.
func ConfigOutput(w Writer) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultWriter = w
}

// DefaultWriter returns the current process-wide default Writer.
func DefaultWriter() Writer {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultWriter
}

// StreamWriter writes each line followed by a newline to an io.Writer.
type StreamWriter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewStreamWriter creates a StreamWriter on out.
func NewStreamWriter(out io.Writer) *StreamWriter {
	return &StreamWriter{out: out}
}

// StdoutWriter returns a StreamWriter on standard output.
func StdoutWriter() *StreamWriter {
	return NewStreamWriter(os.Stdout)
}

func (w *StreamWriter) Write(line string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := io.WriteString(w.out, line+"\n")
	return err
}

// FileWriter writes JSON lines to a file.
type FileWriter struct {
	StreamWriter
	f *os.File
}

// NewFileWriter creates or truncates the file at path.
func NewFileWriter(path string) (*FileWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("opening output file: %w", err)
	}
	return &FileWriter{StreamWriter: StreamWriter{out: f}, f: f}, nil
}

// Close flushes and closes the file.
func (w *FileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.f.Sync(); err != nil {
		w.f.Close()
		return fmt.Errorf("syncing output file: %w", err)
	}
	return w.f.Close()
}

// BufferWriter keeps lines in memory.
type BufferWriter struct {
	mu    sync.Mutex
	lines []string
}

// NewBufferWriter creates an empty BufferWriter.
func NewBufferWriter() *BufferWriter {
	return &BufferWriter{}
}

func (w *BufferWriter) Write(line string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lines = append(w.lines, line)
	return nil
}

// Lines returns a copy of the lines written so far.
func (w *BufferWriter) Lines() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.lines...)
}

// Len returns the number of lines written so far.
func (w *BufferWriter) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.lines)
}

// Decoded parses line i as a JSON object.
func (w *BufferWriter) Decoded(i int) (map[string]any, error) {
	w.mu.Lock()
	if i < 0 || i >= len(w.lines) {
		w.mu.Unlock()
		return nil, fmt.Errorf("line %d out of range (have %d)", i, len(w.lines))
	}
	line := w.lines[i]
	w.mu.Unlock()

	var out map[string]any
	if err := json.Unmarshal([]byte(line), &out); err != nil {
		return nil, fmt.Errorf("decoding line %d: %w", i, err)
	}
	return out, nil
}

type multiWriter []Writer

// MultiWriter returns a Writer that writes each line to every w in order.
// It stops at the first failure and returns that error.
func MultiWriter(writers ...Writer) Writer {
	return multiWriter(append([]Writer(nil), writers...))
}

func (m multiWriter) Write(line string) error {
	for _, w := range m {
		if err := w.Write(line); err != nil {
			return err
		}
	}
	return nil
}
