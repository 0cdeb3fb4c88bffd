package utils

import (
	"io"
	"sync"
)

// FlushingWriter serializes writes and flushes the wrapped writer after each one when it exposes Flush.
// Progress lines written through a bufio.Writer therefore appear as each item finishes.
type FlushingWriter struct {
	writer io.Writer
	mutex  sync.Mutex
}

// NewFlushingWriter wraps writer; nil stays nil and an existing FlushingWriter is returned unchanged.
func NewFlushingWriter(writer io.Writer) io.Writer {
	if writer == nil {
		return nil
	}
	if _, alreadyWrapped := writer.(*FlushingWriter); alreadyWrapped {
		return writer
	}
	return &FlushingWriter{writer: writer}
}

// Write delegates to the wrapped writer, then flushes it.
func (flushingWriter *FlushingWriter) Write(data []byte) (int, error) {
	if flushingWriter == nil || flushingWriter.writer == nil {
		return 0, nil
	}

	flushingWriter.mutex.Lock()
	defer flushingWriter.mutex.Unlock()

	bytesWritten, writeError := flushingWriter.writer.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}

	if flushableWriter, flushable := flushingWriter.writer.(interface{ Flush() error }); flushable {
		if flushError := flushableWriter.Flush(); flushError != nil {
			return bytesWritten, flushError
		}
	}
	return bytesWritten, nil
}
