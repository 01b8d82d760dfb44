package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"go401-gateway/internal/render"
)

var askEmail string

var askCmd = &cobra.Command{
	Use:   "ask <tool> [args...]",
	Short: "Authenticate and run a single tool",
	Example: `  agentctl ask --email admin@acme.com count
  agentctl ask --email admin@acme.com participants C1`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gateway, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()
		defer gateway.Close()

		ctx := cmd.Context()
		if askEmail != "" {
			if _, err := gateway.Service.Authenticate(ctx, sessionID, askEmail); err != nil {
				return fmt.Errorf("%s", render.Error(err))
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), runTool(ctx, gateway.Service, sessionID, strings.Join(args, " ")))
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askEmail, "email", "", "email to authenticate with before running the tool")
	rootCmd.AddCommand(askCmd)
}
