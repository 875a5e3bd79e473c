// Package smartpub implements the researcher-facing CLI: submitting papers,
// tracking their review state, and following registry events.
package smartpub

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/smartpublish/registry/pkg/sdk"
)

const (
	serverEnv   = "SMARTPUBLISH_SERVER"
	identityEnv = "SMARTPUBLISH_IDENTITY"

	defaultServer = "http://localhost:8080"
)

// NewRootCommand builds the smartpub command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "smartpub",
		Short:         "Submit and track scholarly papers in the registry",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("server", envOrDefault(serverEnv, defaultServer), "registry server URL")
	root.PersistentFlags().String("identity", os.Getenv(identityEnv), "caller identity asserted on requests")

	root.AddCommand(newSubmitCommand())
	root.AddCommand(newStatusCommand())
	root.AddCommand(newMyWorkCommand())
	root.AddCommand(newAssetsCommand())
	root.AddCommand(newGrantCommand())
	root.AddCommand(newTransitionCommand())
	root.AddCommand(newWatchCommand())
	return root
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCommand().Execute()
}

func newClient(cmd *cobra.Command) *sdk.Client {
	server, _ := cmd.Flags().GetString("server")
	identity, _ := cmd.Flags().GetString("identity")
	return sdk.New(server, identity)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
