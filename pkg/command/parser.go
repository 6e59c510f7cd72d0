package command

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Command is one parsed REPL line. Verb is upper-cased.
type Command struct {
	Verb string
	Args []string
}

type arity struct {
	min, max int
	usage    string
}

var verbs = map[string]arity{
	"SET":      {2, 2, "SET <key> <value>"},
	"GET":      {1, 1, "GET <key>"},
	"DEL":      {1, 1, "DEL <key>"},
	"EXISTS":   {1, 1, "EXISTS <key>"},
	"PREFIX":   {0, 1, "PREFIX [prefix]"},
	"RANGE":    {2, 2, "RANGE <start> <end>"},
	"KEYS":     {1, 1, "KEYS <pattern>"},
	"FLUSHALL": {0, 0, "FLUSHALL"},
	"STATS":    {0, 0, "STATS"},
	"CHECK":    {0, 0, "CHECK"},
	"EXPORT":   {1, 1, "EXPORT <file>"},
	"IMPORT":   {1, 1, "IMPORT <file>"},
	"HELP":     {0, 0, "HELP"},
	"EXIT":     {0, 0, "EXIT"},
	"QUIT":     {0, 0, "QUIT"},
}

var setRe = regexp.MustCompile(`^(?i:SET)\s+(\S+) (.*)$`)

// Parse splits a line into a verb and arguments. SET keeps its value
// verbatim after the single space following the key.
func Parse(line string) (*Command, error) {
	line = strings.TrimRight(line, "\r\n")
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, errors.New("empty command")
	}

	verb := strings.ToUpper(fields[0])
	a, ok := verbs[verb]
	if !ok {
		return nil, fmt.Errorf("unknown command '%s'", fields[0])
	}

	if verb == "SET" {
		m := setRe.FindStringSubmatch(strings.TrimLeft(line, " \t"))
		if m == nil || m[2] == "" {
			return nil, fmt.Errorf("usage: %s", a.usage)
		}
		return &Command{Verb: verb, Args: []string{m[1], m[2]}}, nil
	}

	args := fields[1:]
	if len(args) < a.min || len(args) > a.max {
		return nil, fmt.Errorf("usage: %s", a.usage)
	}
	return &Command{Verb: verb, Args: args}, nil
}

// Usage lists every verb's usage line in alphabetical order.
func Usage() []string {
	out := make([]string, 0, len(verbs))
	for _, a := range verbs {
		out = append(out, a.usage)
	}
	slices.Sort(out)
	return out
}
