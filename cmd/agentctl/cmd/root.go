// Package cmd contains the agentctl commands. agentctl plays the orchestrator
// for a single session, calling the secure operations in process.
package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go401-gateway/internal/app"
	"go401-gateway/internal/config"
)

var (
	envFile   string
	sessionID string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "agentctl",
	Short: "Operator shell for the go401 data gateway",
	Long: `agentctl runs the gateway's secure operations for one session, the way a
conversational orchestrator would.

Example usage:
  agentctl shell                               # Interactive session
  agentctl ask --email admin@acme.com count    # Authenticate, then run one tool`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "environment file to load")
	rootCmd.PersistentFlags().StringVar(&sessionID, "session", "", "session id (default: random)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
}

// setup loads configuration and builds the gateway.
func setup(cmd *cobra.Command) (*app.App, *zap.Logger, error) {
	_ = godotenv.Load(envFile)

	logger := zap.NewNop()
	if verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create logger: %w", err)
		}
		logger = l
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	gateway, err := app.New(cmd.Context(), config.Load(), logger)
	if err != nil {
		return nil, nil, err
	}
	return gateway, logger, nil
}
