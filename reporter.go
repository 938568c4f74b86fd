package openactivity

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"
)

// WriterReporter prints status messages, one per line.
type WriterReporter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriterReporter creates a Reporter writing to out.
func NewWriterReporter(out io.Writer) *WriterReporter {
	return &WriterReporter{out: out}
}

func (r *WriterReporter) Report(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := fmt.Fprintln(r.out, message); err != nil {
		log.Warn().Err(err).Str("message", message).Msg("report status failed")
	}
}
