// Package logging captures the raw output of dispatched child processes
// into per-run log files, so a failing context can be inspected without
// rerunning it.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/acarl005/stripansi"
)

const (
	RunDirectoryPrefix = "testrun-" // Standardized prefix for run directories
)

// FileLogger handles writing child process output to files
type FileLogger struct {
	baseDir      string                // Base directory for logs
	logDir       string                // This run's log directory
	mu           sync.Mutex            // Protects the writer map
	asyncWriters map[string]*AsyncFile // One writer per context
	runID        string                // Current run ID
}

// AsyncFile provides non-blocking file writing capabilities
type AsyncFile struct {
	file    *os.File
	queue   chan []byte
	wg      sync.WaitGroup
	mu      sync.Mutex
	stopped bool
}

// NewAsyncFile creates a new AsyncFile for non-blocking writes
func NewAsyncFile(filepath string) (*AsyncFile, error) {
	file, err := os.Create(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file %s: %w", filepath, err)
	}

	af := &AsyncFile{
		file:  file,
		queue: make(chan []byte, 100), // Buffer channel to reduce blocking
	}

	af.wg.Add(1)
	go af.processQueue()

	return af, nil
}

// Write queues data to be written asynchronously
func (af *AsyncFile) Write(data []byte) error {
	af.mu.Lock()
	defer af.mu.Unlock()

	if af.stopped {
		return fmt.Errorf("async file is closed")
	}

	// Make a copy of the data to avoid race conditions
	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	af.queue <- dataCopy
	return nil
}

// processQueue processes the write queue in the background
func (af *AsyncFile) processQueue() {
	defer af.wg.Done()

	for data := range af.queue {
		_, err := af.file.Write(data)
		if err != nil {
			// Log the error but continue processing
			fmt.Fprintf(os.Stderr, "Error writing to file: %v\n", err)
		}
	}
}

// Close stops the async writer and closes the file
func (af *AsyncFile) Close() error {
	af.mu.Lock()
	if !af.stopped {
		af.stopped = true
		close(af.queue)
	}
	af.mu.Unlock()

	// Wait for all writes to complete
	af.wg.Wait()
	return af.file.Close()
}

// NewFileLogger creates a FileLogger rooted at <baseDir>/logs/testrun-<runID>.
func NewFileLogger(baseDir string, runID string) (*FileLogger, error) {
	if runID == "" {
		return nil, fmt.Errorf("runID must not be empty")
	}

	logDir := filepath.Join(baseDir, "logs", RunDirectoryPrefix+runID)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}

	return &FileLogger{
		baseDir:      baseDir,
		logDir:       logDir,
		asyncWriters: make(map[string]*AsyncFile),
		runID:        runID,
	}, nil
}

// LogDir returns this run's log directory.
func (l *FileLogger) LogDir() string {
	return l.logDir
}

// RunID returns the run identifier the logger was created for.
func (l *FileLogger) RunID() string {
	return l.runID
}

// LogLine appends one output line of a context's child process to that
// context's log file. ANSI color codes are stripped so the file stays
// grep-friendly.
func (l *FileLogger) LogLine(context string, line string) error {
	writer, err := l.writerFor(context)
	if err != nil {
		return err
	}
	return writer.Write([]byte(stripansi.Strip(line) + "\n"))
}

func (l *FileLogger) writerFor(context string) (*AsyncFile, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if writer, ok := l.asyncWriters[context]; ok {
		return writer, nil
	}
	writer, err := NewAsyncFile(filepath.Join(l.logDir, context+".log"))
	if err != nil {
		return nil, err
	}
	l.asyncWriters[context] = writer
	return writer, nil
}

// Close flushes and closes every context log file.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	for context, writer := range l.asyncWriters {
		if err := writer.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log for context %s: %w", context, err)
		}
	}
	l.asyncWriters = make(map[string]*AsyncFile)
	return firstErr
}
