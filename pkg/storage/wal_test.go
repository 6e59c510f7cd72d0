package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"minikv/pkg/common"
)

func TestWALAppendIterateAndTruncate(t *testing.T) {
	walPath := filepath.Join(t.TempDir(), "minikv.log")
	w, err := OpenWAL(walPath)
	if err != nil {
		t.Fatalf("open wal: %v", err)
	}
	defer w.Close()

	if err := w.Append(common.LogEntry{Op: common.OpSet, Key: "one", Value: []byte("uno dos")}); err != nil {
		t.Fatalf("append set: %v", err)
	}
	if err := w.Append(common.LogEntry{Op: common.OpDel, Key: "one"}); err != nil {
		t.Fatalf("append del: %v", err)
	}

	sizeBefore, err := w.Size()
	if err != nil {
		t.Fatalf("size before truncate: %v", err)
	}
	if sizeBefore <= 0 {
		t.Fatalf("expected wal size > 0 before truncate, got %d", sizeBefore)
	}

	it, err := w.NewIterator()
	if err != nil {
		t.Fatalf("new iterator: %v", err)
	}
	rec1, err := it.Next()
	if err != nil {
		it.Close()
		t.Fatalf("first next: %v", err)
	}
	rec2, err := it.Next()
	if err != nil {
		it.Close()
		t.Fatalf("second next: %v", err)
	}
	if _, err := it.Next(); err != io.EOF {
		it.Close()
		t.Fatalf("expected EOF after two records, got %v", err)
	}
	it.Close()

	if rec1.Op != common.OpSet || rec1.Key != "one" || string(rec1.Value) != "uno dos" {
		t.Fatalf("unexpected first record: %s val=%q", rec1.String(), string(rec1.Value))
	}
	if rec2.Op != common.OpDel || rec2.Key != "one" || rec2.Value != nil {
		t.Fatalf("unexpected second record: %s", rec2.String())
	}

	if err := w.Truncate(); err != nil {
		t.Fatalf("truncate wal: %v", err)
	}
	sizeAfter, err := w.Size()
	if err != nil {
		t.Fatalf("size after truncate: %v", err)
	}
	if sizeAfter != 0 {
		t.Fatalf("expected wal size 0 after truncate, got %d", sizeAfter)
	}

	entries, stats, err := w.Replay()
	if err != nil {
		t.Fatalf("replay empty wal: %v", err)
	}
	if len(entries) != 0 || stats.Skipped != 0 {
		t.Fatalf("expected empty replay, got %d entries, %d skipped", len(entries), stats.Skipped)
	}
}

func TestWALReplaySkipsMalformedAndTornLines(t *testing.T) {
	walPath := filepath.Join(t.TempDir(), "minikv.log")
	content := "[2024-01-02 03:04:05] SET a 1\n" +
		"garbage line\n" +
		"[2024-01-02 03:04:06] SET b  two  spaces \n" +
		"[2024-01-02 03:04:07] FOO c\n" +
		"[2024-01-02 03:04:08] DEL a\n" +
		"[2024-01-02 03:04:09] SET c partial"
	if err := os.WriteFile(walPath, []byte(content), 0644); err != nil {
		t.Fatalf("write wal: %v", err)
	}

	w, err := OpenWAL(walPath)
	if err != nil {
		t.Fatalf("open wal: %v", err)
	}
	defer w.Close()

	entries, stats, err := w.Replay()
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if stats.Applied != 3 || stats.Skipped != 3 {
		t.Fatalf("expected applied=3 skipped=3, got %+v", stats)
	}
	if entries[0].Key != "a" || string(entries[0].Value) != "1" {
		t.Fatalf("unexpected first entry: %s", entries[0].String())
	}
	if entries[1].Key != "b" || string(entries[1].Value) != " two  spaces " {
		t.Fatalf("expected whitespace-preserving value, got %q", string(entries[1].Value))
	}
	if entries[2].Op != common.OpDel || entries[2].Key != "a" {
		t.Fatalf("unexpected third entry: %s", entries[2].String())
	}
	if want := int64(len("[2024-01-02 03:04:09] SET c partial")); stats.TornBytes != want {
		t.Fatalf("expected %d torn bytes cut, got %d", want, stats.TornBytes)
	}
}

func TestWALAppendAfterTornTailStartsFreshLine(t *testing.T) {
	walPath := filepath.Join(t.TempDir(), "minikv.log")
	committed := "[2024-01-02 03:04:05] SET a 1\n"
	if err := os.WriteFile(walPath, []byte(committed+"[2024-01-02 03:04:06] SET c tor"), 0644); err != nil {
		t.Fatalf("write wal: %v", err)
	}

	w, err := OpenWAL(walPath)
	if err != nil {
		t.Fatalf("open wal: %v", err)
	}
	if _, _, err := w.Replay(); err != nil {
		t.Fatalf("replay: %v", err)
	}
	data, err := os.ReadFile(walPath)
	if err != nil {
		t.Fatalf("read wal: %v", err)
	}
	if string(data) != committed {
		t.Fatalf("expected torn tail removed, log is %q", string(data))
	}

	if err := w.Append(common.LogEntry{Op: common.OpSet, Key: "b", Value: []byte("2")}); err != nil {
		t.Fatalf("append after repair: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	w2, err := OpenWAL(walPath)
	if err != nil {
		t.Fatalf("reopen wal: %v", err)
	}
	defer w2.Close()
	entries, stats, err := w2.Replay()
	if err != nil {
		t.Fatalf("second replay: %v", err)
	}
	if stats.Applied != 2 || stats.Skipped != 0 || stats.TornBytes != 0 {
		t.Fatalf("expected two clean entries, got %+v", stats)
	}
	if entries[0].Key != "a" || entries[1].Key != "b" || string(entries[1].Value) != "2" {
		t.Fatalf("unexpected entries after repair: %s, %s", entries[0].String(), entries[1].String())
	}
}

func TestWALCloseReportsErrors(t *testing.T) {
	w, err := OpenWAL(filepath.Join(t.TempDir(), "minikv.log"))
	if err != nil {
		t.Fatalf("open wal: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := w.Close(); err == nil {
		t.Fatalf("expected error closing an already closed log")
	}
}

func TestWALAppendRejectsLineBreaks(t *testing.T) {
	w, err := OpenWAL(filepath.Join(t.TempDir(), "minikv.log"))
	if err != nil {
		t.Fatalf("open wal: %v", err)
	}
	defer w.Close()

	bad := []common.LogEntry{
		{Op: common.OpSet, Key: "k", Value: []byte("line1\nline2")},
		{Op: common.OpSet, Key: "k", Value: []byte("v\r")},
		{Op: common.OpSet, Key: "a b", Value: []byte("v")},
		{Op: common.OpDel, Key: "k\n"},
	}
	for _, e := range bad {
		if err := w.Append(e); !errors.Is(err, ErrUnencodable) {
			t.Errorf("Append(%s): expected ErrUnencodable, got %v", e.String(), err)
		}
	}
	if size, _ := w.Size(); size != 0 {
		t.Fatalf("rejected entries must not reach the log, size=%d", size)
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line  string
		op    common.Op
		key   string
		value string
		err   bool
	}{
		{"[2024-05-06 07:08:09] SET k v", common.OpSet, "k", "v", false},
		{"[2024-05-06 07:08:09] SET k hello world\n", common.OpSet, "k", "hello world", false},
		{"[2024-05-06 07:08:09] SET k hello\r\n", common.OpSet, "k", "hello", false},
		{"[2024-05-06 07:08:09] DEL k\n", common.OpDel, "k", "", false},
		{"[2024-05-06 07:08:09] SET k", "", "", "", true},
		{"[2024-05-06 07:08:09] SET k ", "", "", "", true},
		{"[2024-05-06 07:08:09] DEL", "", "", "", true},
		{"[2024-05-06 07:08:09] DEL a b", "", "", "", true},
		{"[2024-05-06 07:08:09]SET k v", "", "", "", true},
		{"[not a time] SET k v", "", "", "", true},
		{"[2024-05-06 07:08:09 SET k v", "", "", "", true},
		{"SET k v", "", "", "", true},
		{"", "", "", "", true},
	}
	for _, tt := range tests {
		e, err := ParseLine(tt.line)
		if tt.err {
			if !errors.Is(err, ErrMalformedEntry) {
				t.Errorf("ParseLine(%q): expected ErrMalformedEntry, got %v", tt.line, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLine(%q): %v", tt.line, err)
			continue
		}
		if e.Op != tt.op || e.Key != tt.key || string(e.Value) != tt.value {
			t.Errorf("ParseLine(%q) = %s %q %q", tt.line, e.Op, e.Key, string(e.Value))
		}
	}
}

func TestFormatEntryRoundTrip(t *testing.T) {
	ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local)
	line := FormatEntry(common.LogEntry{Time: ts, Op: common.OpSet, Key: "k", Value: []byte("a b")})
	if line != "[2024-05-06 07:08:09] SET k a b\n" {
		t.Fatalf("unexpected line %q", line)
	}
	e, err := ParseLine(line)
	if err != nil {
		t.Fatalf("parse formatted line: %v", err)
	}
	if !e.Time.Equal(ts) {
		t.Fatalf("timestamp mismatch: %v vs %v", e.Time, ts)
	}

	del := FormatEntry(common.LogEntry{Time: ts, Op: common.OpDel, Key: "k", Value: []byte("ignored")})
	if del != "[2024-05-06 07:08:09] DEL k\n" {
		t.Fatalf("unexpected del line %q", del)
	}
}
