package ulogger

import (
	"sync"
	"testing"
)

// VerboseTestLogger routes ledger log output through testing.T so messages
// show up attached to the test that produced them. Safe for concurrent use by
// the goroutines a test spawns.
type VerboseTestLogger struct {
	t       *testing.T
	service string
	mu      sync.Mutex
}

func NewVerboseTestLogger(t *testing.T) *VerboseTestLogger {
	return &VerboseTestLogger{t: t}
}

func (l *VerboseTestLogger) LogLevel() int { return 0 }

func (l *VerboseTestLogger) SetLogLevel(_ string) {}

// New returns a logger labelled with the service name. Output still goes to
// the same testing.T.
func (l *VerboseTestLogger) New(service string, _ ...Option) Logger {
	return &VerboseTestLogger{t: l.t, service: service}
}

func (l *VerboseTestLogger) Duplicate(_ ...Option) Logger {
	return &VerboseTestLogger{t: l.t, service: l.service}
}

func (l *VerboseTestLogger) logf(level, format string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	prefix := "[" + level + "] "
	if l.service != "" {
		prefix += l.service + ": "
	}

	l.t.Logf(prefix+format, args...)
}

func (l *VerboseTestLogger) Debugf(format string, args ...interface{}) {
	l.logf("DEBUG", format, args)
}

func (l *VerboseTestLogger) Infof(format string, args ...interface{}) {
	l.logf("INFO", format, args)
}

func (l *VerboseTestLogger) Warnf(format string, args ...interface{}) {
	l.logf("WARN", format, args)
}

func (l *VerboseTestLogger) Errorf(format string, args ...interface{}) {
	l.logf("ERROR", format, args)
}

func (l *VerboseTestLogger) Fatalf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.t.Fatalf("[FATAL] "+format, args...)
}
