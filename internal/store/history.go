package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// HistoryEntry is a single snapshot in the history stream, serialized as one
// JSON line in history.jsonl. Writing snapshots incrementally keeps a partial
// history on disk even if the process dies mid-run.
type HistoryEntry struct {
	// Iteration is the optimization iteration number
	Iteration int `json:"iteration"`

	// Cost is the elite cost at this iteration
	Cost float64 `json:"cost"`

	// Mean and Sigma are the individual's state at this iteration
	Mean  []float64 `json:"mean"`
	Sigma []float64 `json:"sigma"`

	// Evaluations is the cumulative cost-function evaluation count
	Evaluations int `json:"evaluations"`

	// Timestamp records when this entry was written
	Timestamp time.Time `json:"timestamp"`
}

// HistoryWriter writes history entries to a JSONL file.
// It uses buffered I/O for performance and is safe for concurrent use.
type HistoryWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	path   string
}

// NewHistoryWriter creates a history writer for the given run.
// The file is created at <baseDir>/runs/<runID>/history.jsonl.
// If append is true, new entries are appended to an existing file.
func NewHistoryWriter(baseDir, runID string, append bool) (*HistoryWriter, error) {
	runDir := filepath.Join(baseDir, "runs", runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	path := filepath.Join(runDir, "history.jsonl")

	var file *os.File
	var err error
	if append {
		file, err = os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	} else {
		file, err = os.Create(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}

	return &HistoryWriter{
		file:   file,
		writer: bufio.NewWriterSize(file, 64*1024),
		path:   path,
	}, nil
}

// Write appends a history entry. The entry is buffered and hits the disk on
// Flush() or Close().
func (hw *HistoryWriter) Write(entry HistoryEntry) error {
	hw.mu.Lock()
	defer hw.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}

	if _, err := hw.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write history entry: %w", err)
	}
	if err := hw.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	return nil
}

// Flush writes any buffered data to the file and syncs it to disk.
func (hw *HistoryWriter) Flush() error {
	hw.mu.Lock()
	defer hw.mu.Unlock()

	if err := hw.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush history writer: %w", err)
	}
	if err := hw.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync history file: %w", err)
	}
	return nil
}

// Close flushes buffered data and closes the history file.
func (hw *HistoryWriter) Close() error {
	hw.mu.Lock()
	defer hw.mu.Unlock()

	if err := hw.writer.Flush(); err != nil {
		hw.file.Close() // Try to close anyway
		return fmt.Errorf("failed to flush on close: %w", err)
	}
	if err := hw.file.Close(); err != nil {
		return fmt.Errorf("failed to close history file: %w", err)
	}
	return nil
}

// Path returns the filesystem path to the history file.
func (hw *HistoryWriter) Path() string {
	return hw.path
}

// HistoryReader reads history entries from a JSONL file.
type HistoryReader struct {
	file    *os.File
	scanner *bufio.Scanner
}

// NewHistoryReader creates a history reader for the given run.
func NewHistoryReader(baseDir, runID string) (*HistoryReader, error) {
	path := filepath.Join(baseDir, "runs", runID, "history.jsonl")

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{RunID: runID}
		}
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}

	scanner := bufio.NewScanner(file)
	// High-dimensional runs produce long lines
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	return &HistoryReader{file: file, scanner: scanner}, nil
}

// Read reads the next history entry.
// Returns io.EOF when no more entries are available.
func (hr *HistoryReader) Read() (*HistoryEntry, error) {
	if !hr.scanner.Scan() {
		if err := hr.scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to scan history line: %w", err)
		}
		return nil, io.EOF
	}

	var entry HistoryEntry
	if err := json.Unmarshal(hr.scanner.Bytes(), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history entry: %w", err)
	}
	return &entry, nil
}

// ReadAll reads all history entries from the file.
func (hr *HistoryReader) ReadAll() ([]HistoryEntry, error) {
	var entries []HistoryEntry
	for {
		entry, err := hr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

// Close closes the history reader.
func (hr *HistoryReader) Close() error {
	if err := hr.file.Close(); err != nil {
		return fmt.Errorf("failed to close history file: %w", err)
	}
	return nil
}
