// Package rlog sets up the CLI's loggers and a small elapsed-time timer.
// stdout always gets a plain progress stream, while access/error/debug
// optionally fan out to files when a log directory is configured.
package rlog

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Loggers bundles the four streams CLI commands write to. Stdout is
// JournaldLogger's analogue — always present, no file.
type Loggers struct {
	Stdout *log.Logger
	Access *log.Logger
	Error  *log.Logger
	Debug  *log.Logger
}

// Setup opens access/error/debug log files under dir (if dir is non-empty)
// and wires all four loggers. A file that fails to open falls back to
// os.Stderr rather than aborting — the same best-effort posture as the
// teacher's setupLogging, which logs the open failure and carries on with
// whatever streams it did get.
func Setup(dir string) *Loggers {
	stdout := log.New(os.Stdout, "", log.LstdFlags)

	open := func(name, prefix string) *log.Logger {
		if dir == "" {
			return log.New(os.Stderr, prefix, log.LstdFlags)
		}
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rlog: opening %s: %v\n", name, err)
			return log.New(os.Stderr, prefix, log.LstdFlags)
		}
		return log.New(f, prefix, log.LstdFlags)
	}

	return &Loggers{
		Stdout: stdout,
		Access: open("access.log", "ACCESS: "),
		Error:  open("error.log", "ERROR: "),
		Debug:  open("debug.log", "DEBUG: "),
	}
}

// Timer measures elapsed wall-clock time for a build or query phase.
type Timer struct {
	start time.Time
}

// Start begins a timer.
func Start() Timer {
	return Timer{start: time.Now()}
}

// Check returns elapsed seconds since Start, as a float64 the way the
// original's microsecond-duration timer did.
func (t Timer) Check() float64 {
	return time.Since(t.start).Seconds()
}
