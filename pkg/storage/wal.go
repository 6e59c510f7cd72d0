package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"minikv/pkg/common"
)

// WAL is the append-only mutation log. Every Append is flushed and fsynced
// before it returns, so an acknowledged write survives an abrupt restart.
type WAL struct {
	file *os.File
	buf  *bufio.Writer
	path string
}

func OpenWAL(path string) (*WAL, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &WAL{
		file: f,
		buf:  bufio.NewWriter(f),
		path: path,
	}, nil
}

func (w *WAL) Append(entry common.LogEntry) error {
	if err := CheckEntry(entry); err != nil {
		return err
	}
	if _, err := w.buf.WriteString(FormatEntry(entry)); err != nil {
		return err
	}
	if err := w.buf.Flush(); err != nil {
		return err
	}
	return w.file.Sync()
}

func (w *WAL) Sync() error {
	if err := w.buf.Flush(); err != nil {
		return err
	}
	return w.file.Sync()
}

func (w *WAL) Close() error {
	flushErr := w.buf.Flush()
	return errors.Join(flushErr, w.file.Close())
}

func (w *WAL) Path() string {
	return w.path
}

// Truncate discards all history and starts a fresh, empty log.
func (w *WAL) Truncate() error {
	if err := w.buf.Flush(); err != nil {
		return err
	}
	if err := w.file.Close(); err != nil {
		return err
	}
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_RDWR|os.O_TRUNC|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	w.file = f
	w.buf = bufio.NewWriter(f)
	return w.file.Sync()
}

func (w *WAL) Size() (int64, error) {
	if err := w.buf.Flush(); err != nil {
		return 0, err
	}
	st, err := w.file.Stat()
	if err != nil {
		return 0, err
	}
	return st.Size(), nil
}

type WALIterator struct {
	reader *bufio.Reader
	file   *os.File
	offset int64 // end of the last newline-terminated line
}

func (w *WAL) NewIterator() (*WALIterator, error) {
	f, err := os.Open(w.path)
	if err != nil {
		return nil, err
	}
	return &WALIterator{
		file:   f,
		reader: bufio.NewReader(f),
	}, nil
}

// Next returns the next entry. A line that fails to parse yields an error
// wrapping ErrMalformedEntry and the iterator stays usable; a final line
// without its newline yields ErrTornEntry; the end of the log yields io.EOF.
func (it *WALIterator) Next() (common.LogEntry, error) {
	line, err := it.reader.ReadString('\n')
	if err == io.EOF {
		if line == "" {
			return common.LogEntry{}, io.EOF
		}
		return common.LogEntry{}, ErrTornEntry
	}
	if err != nil {
		return common.LogEntry{}, err
	}
	it.offset += int64(len(line))
	return ParseLine(line)
}

func (it *WALIterator) Close() {
	it.file.Close()
}

// Offset returns the byte offset just past the last complete line read.
func (it *WALIterator) Offset() int64 {
	return it.offset
}

// ReplayStats counts what a replay kept and what it skipped. TornBytes is the
// size of an unterminated tail cut off the log.
type ReplayStats struct {
	Applied   int
	Skipped   int
	TornBytes int64
}

// Replay reads the whole log in commit order. Malformed lines are skipped
// individually. A torn final line is skipped and truncated away so the next
// Append starts on a fresh line. Only I/O errors abort.
func (w *WAL) Replay() ([]common.LogEntry, ReplayStats, error) {
	var stats ReplayStats

	if err := w.buf.Flush(); err != nil {
		return nil, stats, err
	}
	it, err := w.NewIterator()
	if err != nil {
		return nil, stats, err
	}
	defer it.Close()

	var entries []common.LogEntry
	for {
		e, err := it.Next()
		switch {
		case err == nil:
			entries = append(entries, e)
			stats.Applied++
		case errors.Is(err, io.EOF):
			return entries, stats, nil
		case errors.Is(err, ErrTornEntry):
			stats.Skipped++
			if err := w.cutTornTail(it.Offset(), &stats); err != nil {
				return entries, stats, err
			}
		case errors.Is(err, ErrMalformedEntry):
			stats.Skipped++
		default:
			return entries, stats, err
		}
	}
}

func (w *WAL) cutTornTail(offset int64, stats *ReplayStats) error {
	st, err := w.file.Stat()
	if err != nil {
		return err
	}
	if err := w.file.Truncate(offset); err != nil {
		return fmt.Errorf("wal: cut torn tail: %w", err)
	}
	stats.TornBytes = st.Size() - offset
	return w.file.Sync()
}
