package storage

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"minikv/pkg/common"
)

// [YYYY-MM-DD HH:MM:SS] SET <key> <value>
// [YYYY-MM-DD HH:MM:SS] DEL <key>

const TimeLayout = "2006-01-02 15:04:05"

// ValidKey reports whether key fits the line format: non-empty, with no
// space or line break.
func ValidKey(key string) bool {
	return key != "" && !strings.ContainsAny(key, " \r\n")
}

// ValidValue reports whether value fits on the rest of one line.
func ValidValue(value []byte) bool {
	return len(value) > 0 && !bytes.ContainsAny(value, "\r\n")
}

// CheckEntry rejects entries whose line would not parse back unchanged.
func CheckEntry(e common.LogEntry) error {
	if !ValidKey(e.Key) {
		return fmt.Errorf("%w: key %q", ErrUnencodable, e.Key)
	}
	if e.Op == common.OpSet && !ValidValue(e.Value) {
		return fmt.Errorf("%w: value for %q", ErrUnencodable, e.Key)
	}
	return nil
}

// FormatEntry renders e as one newline-terminated log line.
func FormatEntry(e common.LogEntry) string {
	ts := e.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(ts.Format(TimeLayout))
	b.WriteString("] ")
	b.WriteString(string(e.Op))
	b.WriteByte(' ')
	b.WriteString(e.Key)
	if e.Op == common.OpSet {
		b.WriteByte(' ')
		b.Write(e.Value)
	}
	b.WriteByte('\n')
	return b.String()
}

// ParseLine decodes a single log line. The trailing newline is optional.
// A SET value is everything after the one space that follows the key.
func ParseLine(line string) (common.LogEntry, error) {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")

	if !strings.HasPrefix(line, "[") {
		return common.LogEntry{}, fmt.Errorf("%w: missing timestamp", ErrMalformedEntry)
	}
	closeIdx := strings.IndexByte(line, ']')
	if closeIdx < 0 {
		return common.LogEntry{}, fmt.Errorf("%w: unterminated timestamp", ErrMalformedEntry)
	}
	ts, err := time.ParseInLocation(TimeLayout, line[1:closeIdx], time.Local)
	if err != nil {
		return common.LogEntry{}, fmt.Errorf("%w: bad timestamp %q", ErrMalformedEntry, line[1:closeIdx])
	}

	rest, ok := strings.CutPrefix(line[closeIdx+1:], " ")
	if !ok {
		return common.LogEntry{}, fmt.Errorf("%w: missing operation", ErrMalformedEntry)
	}
	op, args, _ := strings.Cut(rest, " ")

	switch common.Op(op) {
	case common.OpSet:
		key, value, found := strings.Cut(args, " ")
		if !found || key == "" || value == "" {
			return common.LogEntry{}, fmt.Errorf("%w: SET needs key and value", ErrMalformedEntry)
		}
		return common.LogEntry{Time: ts, Op: common.OpSet, Key: key, Value: []byte(value)}, nil
	case common.OpDel:
		if args == "" || strings.ContainsRune(args, ' ') {
			return common.LogEntry{}, fmt.Errorf("%w: DEL needs exactly one key", ErrMalformedEntry)
		}
		return common.LogEntry{Time: ts, Op: common.OpDel, Key: args}, nil
	default:
		return common.LogEntry{}, fmt.Errorf("%w: unknown operation %q", ErrMalformedEntry, op)
	}
}
