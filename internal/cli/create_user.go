package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spellbook-app/spellbook/internal/auth"
	"github.com/spellbook-app/spellbook/internal/config"
	"github.com/spellbook-app/spellbook/internal/database"
	"github.com/spellbook-app/spellbook/internal/database/users"
)

// CreateUserCommand creates an account with a password, for bootstrapping a
// server that has AUTH_AUTO_REGISTER turned off.
type CreateUserCommand struct {
	Email        string
	Password     string
	Name         string
	Username     string
	DatabasePath string
	BcryptCost   int

	out io.Writer
}

func NewCreateUserCommand() *cobra.Command {
	cmd := &CreateUserCommand{}

	c := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user account",
		Example: `  spellbook create-user --email merlin@example.com --password 'correct horse'
  spellbook create-user --email nimue@example.com --password s3cretpass --username nimue --db ./data/spellbook.db`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cmd.out = c.OutOrStdout()
			return cmd.Run()
		},
	}

	fs := c.Flags()
	fs.StringVar(&cmd.Email, "email", "", "Email address used to sign in (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password, at least 8 characters (required)")
	fs.StringVar(&cmd.Name, "name", "", "Display name (defaults to the email local part)")
	fs.StringVar(&cmd.Username, "username", "", "Username (derived from the email when empty)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.IntVar(&cmd.BcryptCost, "bcrypt-cost", 10, "bcrypt cost factor")
	_ = c.MarkFlagRequired("email")
	_ = c.MarkFlagRequired("password")

	return c
}

func (cmd *CreateUserCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath, zap.NewNop())
	if err != nil {
		return err
	}
	defer db.Close()

	service := auth.NewService(users.NewRepository(db.DB), config.Auth{BcryptCost: cmd.BcryptCost})
	user, err := service.Register(auth.RegisterInput{
		Email:    cmd.Email,
		Password: cmd.Password,
		Name:     cmd.Name,
		Username: cmd.Username,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(cmd.output(), "Created user %s (@%s, id %s)\n", user.Email, user.Username, user.ID)
	return nil
}

func (cmd *CreateUserCommand) output() io.Writer {
	if cmd.out == nil {
		return io.Discard
	}
	return cmd.out
}
