package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forgo/docq/pkg/query"
)

// CountOptions holds flags for the count command.
type CountOptions struct {
	*RootOptions
	Where []string
}

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CountOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "count <table>",
		Short: "Count records in a table",
		Long: `Count the records in a table, optionally filtered.

Example:
  docq count dog
  docq count dog --where "adopted = false"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringArrayVar(&opts.Where, "where", nil, `filter "field op value", repeatable, conjoined with AND`)

	return cmd
}

func runCount(cmd *cobra.Command, opts *CountOptions, table string) error {
	ctx, cancel, db, err := connect(cmd.Context(), opts.RootOptions)
	if err != nil {
		return err
	}
	defer cancel()
	defer db.Close()

	q := query.From[map[string]any](db, table)
	if pred, err := ParseWhere(opts.Where); err != nil {
		return err
	} else if pred != nil {
		q = q.Where(pred)
	}

	n, err := q.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), n)
	return nil
}
