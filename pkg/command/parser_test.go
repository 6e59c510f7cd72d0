package command

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		verb string
		args []string
		err  bool
	}{
		{"SET a 1", "SET", []string{"a", "1"}, false},
		{"set a hello world", "SET", []string{"a", "hello world"}, false},
		{"  SET a  padded value ", "SET", []string{"a", " padded value "}, false},
		{"get a", "GET", []string{"a"}, false},
		{"Del a\n", "DEL", []string{"a"}, false},
		{"exists a", "EXISTS", []string{"a"}, false},
		{"prefix", "PREFIX", []string{}, false},
		{"PREFIX us", "PREFIX", []string{"us"}, false},
		{"RANGE a z", "RANGE", []string{"a", "z"}, false},
		{"keys user:*", "KEYS", []string{"user:*"}, false},
		{"flushall", "FLUSHALL", []string{}, false},
		{"quit", "QUIT", []string{}, false},
		{"SET a", "", nil, true},
		{"SET a ", "", nil, true},
		{"GET", "", nil, true},
		{"GET a b", "", nil, true},
		{"RANGE a", "", nil, true},
		{"FLUSHALL now", "", nil, true},
		{"SELECT * FROM t", "", nil, true},
		{"   ", "", nil, true},
	}
	for _, tt := range tests {
		cmd, err := Parse(tt.line)
		if tt.err {
			if err == nil {
				t.Errorf("Parse(%q): expected error", tt.line)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q): %v", tt.line, err)
			continue
		}
		if cmd.Verb != tt.verb {
			t.Errorf("Parse(%q): verb=%q, want %q", tt.line, cmd.Verb, tt.verb)
		}
		if !reflect.DeepEqual(cmd.Args, tt.args) {
			t.Errorf("Parse(%q): args=%q, want %q", tt.line, cmd.Args, tt.args)
		}
	}
}

func TestUsageCoversEveryVerb(t *testing.T) {
	if got := len(Usage()); got != len(verbs) {
		t.Fatalf("expected %d usage lines, got %d", len(verbs), got)
	}
}
