package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"minikv/pkg/command"
	"minikv/pkg/core"
)

// execute runs one input line and reports whether the shell should exit.
func execute(engine *core.Engine, line string, out io.Writer) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	cmd, err := command.Parse(line)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return false
	}

	switch cmd.Verb {
	case "SET":
		if err := engine.Insert(cmd.Args[0], []byte(cmd.Args[1])); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return false
		}
		fmt.Fprintln(out, "OK")

	case "GET":
		if val, ok := engine.Retrieve(cmd.Args[0]); ok {
			fmt.Fprintf(out, "\"%s\"\n", string(val))
		} else {
			fmt.Fprintln(out, "(nil)")
		}

	case "DEL":
		existed := engine.Exists(cmd.Args[0])
		if err := engine.Remove(cmd.Args[0]); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return false
		}
		if existed {
			fmt.Fprintln(out, "(integer) 1")
		} else {
			fmt.Fprintln(out, "(integer) 0")
		}

	case "EXISTS":
		if engine.Exists(cmd.Args[0]) {
			fmt.Fprintln(out, "(integer) 1")
		} else {
			fmt.Fprintln(out, "(integer) 0")
		}

	case "PREFIX":
		prefix := ""
		if len(cmd.Args) == 1 {
			prefix = cmd.Args[0]
		}
		printKeys(out, engine.KeysWithPrefix(prefix))

	case "RANGE":
		printKeys(out, engine.RangeQuery(cmd.Args[0], cmd.Args[1]))

	case "KEYS":
		printKeys(out, engine.Keys(cmd.Args[0]))

	case "FLUSHALL":
		if err := engine.FlushAll(); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return false
		}
		fmt.Fprintln(out, "OK")

	case "STATS":
		stats := engine.Stats()
		names := make([]string, 0, len(stats))
		for k := range stats {
			names = append(names, k)
		}
		slices.Sort(names)
		for _, k := range names {
			fmt.Fprintf(out, "%s: %v\n", k, stats[k])
		}

	case "CHECK":
		if err := engine.Check(); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return false
		}
		fmt.Fprintln(out, "OK")

	case "EXPORT":
		n, err := engine.ExportSnapshot(cmd.Args[0])
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return false
		}
		fmt.Fprintf(out, "Exported %d records\n", n)

	case "IMPORT":
		n, err := engine.ImportSnapshot(cmd.Args[0])
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return false
		}
		fmt.Fprintf(out, "Imported %d records\n", n)

	case "HELP":
		printHelp(out)

	case "EXIT", "QUIT":
		return true
	}
	return false
}

func printKeys(out io.Writer, keys []string) {
	if len(keys) == 0 {
		fmt.Fprintln(out, "(empty)")
		return
	}
	for i, k := range keys {
		fmt.Fprintf(out, "%d) %s\n", i+1, k)
	}
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "\nCommands:")
	for _, u := range command.Usage() {
		fmt.Fprintf(out, "  %s\n", u)
	}
	fmt.Fprintln(out, "\nKEYS patterns: '*' for all keys, 'text*' for a prefix, anything else matches literally.")
}
