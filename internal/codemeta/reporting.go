package codemeta

import (
	"fmt"
	"io"
	"os"

	"github.com/temirov/metapr/internal/utils"
)

// Reporter emits human-readable progress lines.
type Reporter interface {
	Printf(format string, args ...any)
}

type writerReporter struct {
	writer io.Writer
}

// NewWriterReporter constructs a Reporter over a utils.FlushingWriter, so concurrent workers never
// interleave lines and buffered writers are flushed per line; nil selects standard output.
func NewWriterReporter(writer io.Writer) Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return writerReporter{writer: utils.NewFlushingWriter(writer)}
}

func (reporter writerReporter) Printf(format string, args ...any) {
	fmt.Fprintf(reporter.writer, format, args...)
}
