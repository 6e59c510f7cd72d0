package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"minikv/pkg/config"
	"minikv/pkg/core"
)

const Prompt = "minikv> "

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile  string
		dataDir  string
		capacity int
		quiet    bool
	)

	cmd := &cobra.Command{
		Use:   "minikv",
		Short: "Interactive shell for the minikv embedded key-value engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("data") {
				cfg.Storage.Path = dataDir
			}
			if cmd.Flags().Changed("cache") {
				cfg.Engine.CacheCapacity = capacity
			}
			if quiet {
				log.SetOutput(io.Discard)
			}

			engine := core.NewEngine(cfg)
			defer engine.Close()
			if !engine.PersistenceEnabled() {
				fmt.Fprintln(cmd.ErrOrStderr(), "Warning: persistence disabled, data will not survive a restart.")
			}

			interactive := true
			if st, err := os.Stdin.Stat(); err == nil && st.Mode()&os.ModeCharDevice == 0 {
				interactive = false
			}
			return runREPL(engine, cmd.InOrStdin(), cmd.OutOrStdout(), interactive)
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/minikv.yaml or ./minikv.yaml)")
	cmd.Flags().StringVar(&dataDir, "data", "", "data directory holding the log (overrides storage.path)")
	cmd.Flags().IntVar(&capacity, "cache", 0, "recency cache capacity (overrides engine.cache_capacity)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress engine log output")
	return cmd
}

func runREPL(engine *core.Engine, in io.Reader, out io.Writer, interactive bool) error {
	if interactive {
		fmt.Fprintln(out, "minikv shell. Type 'help' for commands.")
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for {
		if interactive {
			fmt.Fprint(out, Prompt)
		}
		if !scanner.Scan() {
			break
		}
		if quit := execute(engine, scanner.Text(), out); quit {
			fmt.Fprintln(out, "Bye!")
			return nil
		}
	}
	return scanner.Err()
}
