package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/andrescamacho/craftplan-go/internal/application/common"
	"github.com/andrescamacho/craftplan-go/internal/infrastructure/config"
)

var levelRank = map[string]int{
	"DEBUG":   0,
	"INFO":    1,
	"WARNING": 2,
	"WARN":    2,
	"ERROR":   3,
}

// StdLogger writes planner log entries through the standard library logger
type StdLogger struct {
	mu       sync.Mutex
	out      *log.Logger
	format   string
	minLevel int
	fields   map[string]interface{}
	now      func() time.Time
}

var _ common.Logger = (*StdLogger)(nil)

// NewStdLogger creates a logger writing to w. Format is "text" or "json";
// level is one of debug, info, warn, error.
func NewStdLogger(w io.Writer, format, level string) *StdLogger {
	return &StdLogger{
		out:      log.New(w, "", 0),
		format:   format,
		minLevel: rankOf(level),
		now:      time.Now,
	}
}

// NewFromConfig builds a logger from the logging section; the returned closer
// releases the log file when output is "file".
func NewFromConfig(cfg config.LoggingConfig) (*StdLogger, io.Closer, error) {
	switch cfg.Output {
	case "stdout":
		return NewStdLogger(os.Stdout, cfg.Format, cfg.Level), nopCloser{}, nil
	case "file":
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return NewStdLogger(f, cfg.Format, cfg.Level), f, nil
	default:
		return NewStdLogger(os.Stderr, cfg.Format, cfg.Level), nopCloser{}, nil
	}
}

// With returns a logger that adds fields to every entry
func (l *StdLogger) With(fields map[string]interface{}) *StdLogger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &StdLogger{
		out:      l.out,
		format:   l.format,
		minLevel: l.minLevel,
		fields:   merged,
		now:      l.now,
	}
}

// Log implements common.Logger
func (l *StdLogger) Log(level, message string, metadata map[string]interface{}) {
	level = strings.ToUpper(level)
	if rankOf(level) < l.minLevel {
		return
	}

	fields := make(map[string]interface{}, len(l.fields)+len(metadata))
	for k, v := range l.fields {
		fields[k] = v
	}
	for k, v := range metadata {
		fields[k] = v
	}

	var line string
	if l.format == "json" {
		line = l.jsonLine(level, message, fields)
	} else {
		line = l.textLine(level, message, fields)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Println(line)
}

func (l *StdLogger) textLine(level, message string, fields map[string]interface{}) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s", l.now().UTC().Format(time.RFC3339), level, message)
	for _, k := range sortedKeys(fields) {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	return b.String()
}

func (l *StdLogger) jsonLine(level, message string, fields map[string]interface{}) string {
	entry := make(map[string]interface{}, len(fields)+3)
	for k, v := range fields {
		entry[k] = v
	}
	entry["time"] = l.now().UTC().Format(time.RFC3339)
	entry["level"] = level
	entry["message"] = message

	data, err := json.Marshal(entry)
	if err != nil {
		return l.textLine(level, message, fields)
	}
	return string(data)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func rankOf(level string) int {
	if rank, ok := levelRank[strings.ToUpper(level)]; ok {
		return rank
	}
	return levelRank["INFO"]
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
