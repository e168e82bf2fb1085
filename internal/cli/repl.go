package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pentagram/internal/engine"
	"github.com/roach88/pentagram/internal/lex"
)

// Prompt is printed before every repl line.
const Prompt = "> "

const historyLines = 10

// NewReplCommand creates the repl command.
func NewReplCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Long: `Read Pentagram lines and run each one as it is entered.

Definitions stay visible to later lines. A line that fails is
forgotten. Values left on the stack are printed as [ v1 v2 ].

Commands:
  :history         show recent batches from the journal
  :tokens <line>   show how a line is lexed
  :quit            leave the session`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPLCommand(rootOpts, cmd)
		},
	}
}

func runREPLCommand(opts *RootOptions, cmd *cobra.Command) error {
	if err := opts.prepare(cmd); err != nil {
		return err
	}
	ctx := commandContext(cmd)
	eng, closeJournal, err := openEngine(ctx, opts)
	if err != nil {
		return err
	}
	defer closeJournal()

	return runREPL(ctx, eng, cmd.InOrStdin(), cmd.OutOrStdout())
}

// runREPL reads lines from in until EOF or :quit.
func runREPL(ctx context.Context, eng *engine.Engine, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, Prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimRight(scanner.Text(), "\r")

		switch cmd := strings.TrimSpace(line); {
		case cmd == "":
			continue
		case cmd == ":quit" || cmd == ":q":
			return nil
		case cmd == ":history":
			printHistory(ctx, eng, out)
			continue
		case strings.HasPrefix(cmd, ":tokens"):
			for _, t := range lex.Describe(lex.Tokens(strings.TrimSpace(strings.TrimPrefix(cmd, ":tokens")))) {
				fmt.Fprintln(out, t)
			}
			continue
		}

		if err := eng.ExecuteREPL(ctx, line, out); err != nil {
			if werr := reportREPLError(out, err); werr != nil {
				return werr
			}
		}
	}
}

func printHistory(ctx context.Context, eng *engine.Engine, out io.Writer) {
	batches, err := eng.History(ctx, historyLines)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	for i := len(batches) - 1; i >= 0; i-- {
		fmt.Fprintln(out, formatBatch(batches[i]))
	}
}
