package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spellbook-app/spellbook/internal/config"
	"github.com/spellbook-app/spellbook/internal/database"
	"github.com/spellbook-app/spellbook/internal/search"
)

// ReindexCommand rebuilds the search index from the database. The server must
// be stopped first since bleve holds an exclusive lock on the index.
type ReindexCommand struct {
	DatabasePath string
	IndexDir     string

	out io.Writer
}

func NewReindexCommand() *cobra.Command {
	cmd := &ReindexCommand{}

	c := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the search index",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cmd.out = c.OutOrStdout()
			return cmd.Run()
		},
	}

	fs := c.Flags()
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&cmd.IndexDir, "index", config.DefaultSearchIndexDir, "Path to the search index directory")

	return c
}

func (cmd *ReindexCommand) Run() error {
	out := cmd.out
	if out == nil {
		out = io.Discard
	}

	db, err := database.NewDatabase(cmd.DatabasePath, zap.NewNop())
	if err != nil {
		return err
	}
	defer db.Close()

	index, err := search.Open(search.Options{Path: cmd.IndexDir})
	if err != nil {
		return fmt.Errorf("failed to open search index: %w", err)
	}
	defer index.Close()

	start := time.Now()
	n, err := index.Reindex(db.DB)
	if err != nil {
		return fmt.Errorf("failed to reindex: %w", err)
	}

	fmt.Fprintf(out, "Indexed %d documents in %s\n", n, time.Since(start).Round(time.Millisecond))
	return nil
}
