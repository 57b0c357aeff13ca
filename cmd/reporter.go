package cmd

import (
	"fmt"
	"io"
	"sync"

	"github.com/kozaktomas/smart-attendance/internal/constants"
	"github.com/kozaktomas/smart-attendance/internal/status"
	"github.com/schollz/progressbar/v3"
)

// cliReporter prints Status updates and renders the pre-capture countdown as a progress bar.
type cliReporter struct {
	mu    sync.Mutex
	out   io.Writer
	bar   *progressbar.ProgressBar
	final status.Status
}

func newCLIReporter(out io.Writer) *cliReporter {
	return &cliReporter{out: out, final: status.Ready}
}

func (r *cliReporter) SetStatus(s status.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.final = s
	if r.bar != nil {
		// Countdown messages are shown by the bar itself.
		if s.Type == status.TypeLoading {
			r.bar.Describe(s.Message)
			return
		}
		r.finishBar()
	}
	switch s.Type {
	case status.TypeError:
		fmt.Fprintf(r.out, "Error: %s\n", s.Message)
	default:
		fmt.Fprintln(r.out, s.Message)
	}
}

func (r *cliReporter) SetCountdown(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n == 0 {
		r.finishBar()
		return
	}
	if r.bar == nil {
		r.bar = progressbar.NewOptions(constants.CountdownFrom,
			progressbar.OptionSetWriter(r.out),
			progressbar.OptionSetDescription(fmt.Sprintf("Capturing in %d...", n)),
			progressbar.OptionSetWidth(constants.CountdownFrom*10),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = r.bar.Set(constants.CountdownFrom - n + 1)
}

func (r *cliReporter) finishBar() {
	if r.bar == nil {
		return
	}
	_ = r.bar.Finish()
	r.bar = nil
}

// Final returns the last status reported.
func (r *cliReporter) Final() status.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.final
}
