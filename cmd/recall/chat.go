package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recall-ai/recall-go/metrics"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat session",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup()
			if err != nil {
				return err
			}
			defer rt.close()

			a, err := rt.newAgent()
			if err != nil {
				return err
			}
			return runREPL(cmd, a)
		},
	}
}

// replAgent is the surface the REPL needs; satisfied by *agent.Agent.
type replAgent interface {
	Chat(ctx context.Context, message string) (string, error)
	History() string
	ClearShortTerm()
	Metrics() *metrics.Aggregator
}

func runREPL(cmd *cobra.Command, a replAgent) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "recall: chat with a memory-augmented agent")
	fmt.Fprintln(out, "Commands: history, clear, metrics, exit")
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "exit", "quit":
			if err := a.Metrics().SaveAggregated(); err != nil {
				fmt.Fprintf(out, "warning: could not save metrics: %v\n", err)
			}
			fmt.Fprintln(out, "Bye.")
			return nil

		case "history":
			fmt.Fprintln(out, a.History())

		case "clear":
			a.ClearShortTerm()
			fmt.Fprintln(out, "Short-term memory cleared.")

		case "metrics":
			a.Metrics().WriteSummary(out)

		default:
			fmt.Fprintln(out, "Thinking...")
			reply, err := a.Chat(cmd.Context(), line)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "\n%s\n\n", reply)
		}
	}

	// EOF (ctrl-d): save before leaving, same as exit.
	if err := a.Metrics().SaveAggregated(); err != nil {
		fmt.Fprintf(out, "warning: could not save metrics: %v\n", err)
	}
	return scanner.Err()
}
