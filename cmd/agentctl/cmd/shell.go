package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive session",
	Long: `Start an interactive session. Each line names one tool and its arguments.
The session starts unauthenticated; use "auth <email>" first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		gateway, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()
		defer gateway.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "Session %s. Type help for the list of tools.\n", sessionID)
		return repl(cmd.Context(), gateway.Service, sessionID, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

// repl reads tool lines until EOF or quit.
func repl(ctx context.Context, ops operations, sessionID string, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit":
			return nil
		}
		fmt.Fprintln(out, runTool(ctx, ops, sessionID, line))
	}
}
