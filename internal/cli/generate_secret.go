package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spellbook-app/spellbook/internal/auth"
)

// NewGenerateSecretCommand prints a value for AUTH_SESSION_SECRET.
func NewGenerateSecretCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-secret",
		Short: "Print a random AUTH_SESSION_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			secret, err := auth.GenerateSecret()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.OutOrStdout(), secret)
			return nil
		},
	}
}
