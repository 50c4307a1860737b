package logger

import (
	"bufio"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// AsyncFileWriter moves log persistence off the request path. Records are
// queued on a channel and written by a single worker goroutine, so a slow
// disk never blocks a handler; a full queue drops the record and counts the
// drop instead of applying backpressure. Close drains the queue, flushes and
// closes the file, and reports how many records were lost.
type AsyncFileWriter struct {
	file       *os.File
	buf        *bufio.Writer
	queue      chan []byte
	flushEvery time.Duration

	dropped  atomic.Uint64
	closing  chan struct{}
	finished chan struct{}
	closeErr error
	once     sync.Once
}

func NewAsyncFileWriter(logFile string, bufferSize int) (*AsyncFileWriter, error) {
	return newAsyncFileWriter(logFile, bufferSize, 2*time.Second, 1000)
}

func newAsyncFileWriter(logFile string, bufferSize int, flushEvery time.Duration, queueDepth int) (*AsyncFileWriter, error) {
	file, err := os.OpenFile(filepath.Clean(logFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, err
	}

	aw := &AsyncFileWriter{
		file:       file,
		buf:        bufio.NewWriterSize(file, bufferSize),
		queue:      make(chan []byte, queueDepth),
		flushEvery: flushEvery,
		closing:    make(chan struct{}),
		finished:   make(chan struct{}),
	}

	go aw.run()

	return aw, nil
}

// Write never blocks and never fails: logging must not become a second
// failure mode. It reports the full length even when the record is dropped
// so a MultiWriter keeps feeding its other sinks.
func (aw *AsyncFileWriter) Write(p []byte) (int, error) {
	record := make([]byte, len(p))
	copy(record, p)

	select {
	case aw.queue <- record:
	default:
		aw.dropped.Add(1)
	}
	return len(p), nil
}

// Dropped returns how many records were discarded because the queue was full.
func (aw *AsyncFileWriter) Dropped() uint64 {
	return aw.dropped.Load()
}

// run is the only goroutine that touches buf and file, so writes, flushes
// and the final close cannot race.
func (aw *AsyncFileWriter) run() {
	ticker := time.NewTicker(aw.flushEvery)
	defer ticker.Stop()

	for {
		select {
		case record := <-aw.queue:
			_, _ = aw.buf.Write(record)

		case <-ticker.C:
			_ = aw.buf.Flush()

		case <-aw.closing:
			aw.drain()
			_ = aw.buf.Flush()
			aw.closeErr = aw.file.Close()
			close(aw.finished)
			return
		}
	}
}

func (aw *AsyncFileWriter) drain() {
	for {
		select {
		case record := <-aw.queue:
			_, _ = aw.buf.Write(record)
		default:
			return
		}
	}
}

// Close blocks until every queued record is on disk and the file is closed.
// Safe to call more than once.
func (aw *AsyncFileWriter) Close() error {
	aw.once.Do(func() {
		close(aw.closing)
	})
	<-aw.finished
	return aw.closeErr
}
