package store

import (
	"errors"
	"io"
	"os"
	"testing"
	"time"
)

func testEntry(iteration int) HistoryEntry {
	return HistoryEntry{
		Iteration:   iteration,
		Cost:        float64(100-iteration) * 0.01,
		Mean:        []float64{float64(iteration), float64(iteration) * 2},
		Sigma:       []float64{1.5, 0.5},
		Evaluations: iteration * 10,
		Timestamp:   time.Now(),
	}
}

func TestHistoryWriteAndRead(t *testing.T) {
	baseDir := t.TempDir()

	writer, err := NewHistoryWriter(baseDir, "run-1", false)
	if err != nil {
		t.Fatalf("NewHistoryWriter failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := writer.Write(testEntry(i * 10)); err != nil {
			t.Fatalf("Write failed at %d: %v", i, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reader, err := NewHistoryReader(baseDir, "run-1")
	if err != nil {
		t.Fatalf("NewHistoryReader failed: %v", err)
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("Expected 5 entries, got %d", len(entries))
	}
	for i, entry := range entries {
		if entry.Iteration != i*10 {
			t.Errorf("entry %d: expected iteration %d, got %d", i, i*10, entry.Iteration)
		}
		if entry.Evaluations != i*100 {
			t.Errorf("entry %d: expected %d evaluations, got %d", i, i*100, entry.Evaluations)
		}
		if len(entry.Mean) != 2 || len(entry.Sigma) != 2 {
			t.Errorf("entry %d: wrong state dimensionality", i)
		}
	}
}

func TestHistoryFlushBeforeClose(t *testing.T) {
	baseDir := t.TempDir()

	writer, err := NewHistoryWriter(baseDir, "run-1", false)
	if err != nil {
		t.Fatalf("NewHistoryWriter failed: %v", err)
	}
	defer writer.Close()

	if err := writer.Write(testEntry(0)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := writer.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	// Entry must be readable while the writer is still open
	reader, err := NewHistoryReader(baseDir, "run-1")
	if err != nil {
		t.Fatalf("NewHistoryReader failed: %v", err)
	}
	defer reader.Close()

	entry, err := reader.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if entry.Iteration != 0 {
		t.Errorf("Expected iteration 0, got %d", entry.Iteration)
	}
	if _, err := reader.Read(); err != io.EOF {
		t.Errorf("Expected io.EOF after last entry, got %v", err)
	}
}

func TestHistoryAppendMode(t *testing.T) {
	baseDir := t.TempDir()

	writer, err := NewHistoryWriter(baseDir, "run-1", false)
	if err != nil {
		t.Fatalf("NewHistoryWriter failed: %v", err)
	}
	if err := writer.Write(testEntry(0)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	appender, err := NewHistoryWriter(baseDir, "run-1", true)
	if err != nil {
		t.Fatalf("NewHistoryWriter in append mode failed: %v", err)
	}
	if err := appender.Write(testEntry(10)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := appender.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reader, err := NewHistoryReader(baseDir, "run-1")
	if err != nil {
		t.Fatalf("NewHistoryReader failed: %v", err)
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(entries) != 2 || entries[0].Iteration != 0 || entries[1].Iteration != 10 {
		t.Errorf("Expected appended entries [0 10], got %+v", entries)
	}
}

func TestHistoryTruncateMode(t *testing.T) {
	baseDir := t.TempDir()

	for round := 0; round < 2; round++ {
		writer, err := NewHistoryWriter(baseDir, "run-1", false)
		if err != nil {
			t.Fatalf("NewHistoryWriter failed: %v", err)
		}
		if err := writer.Write(testEntry(round)); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if err := writer.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}

	reader, err := NewHistoryReader(baseDir, "run-1")
	if err != nil {
		t.Fatalf("NewHistoryReader failed: %v", err)
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Iteration != 1 {
		t.Errorf("Expected only the second round's entry, got %+v", entries)
	}
}

func TestHistoryReaderNotFound(t *testing.T) {
	_, err := NewHistoryReader(t.TempDir(), "missing-run")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestHistoryWriterPath(t *testing.T) {
	baseDir := t.TempDir()

	writer, err := NewHistoryWriter(baseDir, "run-1", false)
	if err != nil {
		t.Fatalf("NewHistoryWriter failed: %v", err)
	}
	defer writer.Close()

	if _, err := os.Stat(writer.Path()); err != nil {
		t.Errorf("History file missing at reported path: %v", err)
	}
}
