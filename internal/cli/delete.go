package cli

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/forgo/docq/pkg/session"
)

// DeleteOptions holds flags for the delete command.
type DeleteOptions struct {
	*RootOptions
	ID    string
	Where []string
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete <table>",
		Short: "Delete records from a table",
		Long: `Delete one record by id, or every record matching a filter.

Example:
  docq delete dog --id dog:abc123
  docq delete dog --where "adopted = true" --where "age > 10"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "record id to delete")
	cmd.Flags().StringArrayVar(&opts.Where, "where", nil, `filter "field op value", repeatable, conjoined with AND`)
	cmd.MarkFlagsOneRequired("id", "where")
	cmd.MarkFlagsMutuallyExclusive("id", "where")

	return cmd
}

func runDelete(cmd *cobra.Command, opts *DeleteOptions, table string) error {
	ctx, cancel, db, err := connect(cmd.Context(), opts.RootOptions)
	if err != nil {
		return err
	}
	defer cancel()
	defer db.Close()

	s := session.Open(db)
	if opts.ID != "" {
		s.Delete(table, opts.ID)
	} else {
		pred, err := ParseWhere(opts.Where)
		if err != nil {
			return err
		}
		if pred == nil {
			return errors.New("delete: empty filter")
		}
		if err := s.DeleteWhere(table, pred); err != nil {
			return err
		}
	}

	if err := s.SaveChanges(ctx); err != nil {
		return err
	}
	slog.Info("delete applied", "table", table)
	return nil
}
