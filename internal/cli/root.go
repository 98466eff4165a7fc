// Package cli holds the spellbook command line: the server and the
// maintenance commands that run against its database.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/spellbook-app/spellbook/internal/config"
	"github.com/spellbook-app/spellbook/internal/entrypoint"
)

// NewRootCommand builds the spellbook command. Without a subcommand it serves
// HTTP, the same as "spellbook serve".
func NewRootCommand(version string) *cobra.Command {
	serve := func(*cobra.Command, []string) error {
		return entrypoint.Run(config.NewConfig(), version)
	}

	root := &cobra.Command{
		Use:           "spellbook",
		Short:         "Spellbook code snippet server",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          serve,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server",
			Long: `Run the HTTP server. Settings come from the environment, for example
PORT, DATABASE_PATH, AUTH_SESSION_SECRET and SEARCH_INDEX_DIR.`,
			Args: cobra.NoArgs,
			RunE: serve,
		},
		NewCreateUserCommand(),
		NewReindexCommand(),
		NewGenerateSecretCommand(),
	)
	return root
}
