package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forgo/docq/pkg/query"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Where  []string
	Select string
	Order  string
	Desc   bool
	Limit  int
	Skip   int
	First  bool
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <table>",
		Short: "Select records from a table",
		Long: `Select records from a table, printed as JSON, one document per line.

Example:
  docq query dog --where "age > 3" --order name --limit 10
  docq query dog --where "name startswith Sp" --select name --first`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringArrayVar(&opts.Where, "where", nil, `filter "field op value", repeatable, conjoined with AND`)
	cmd.Flags().StringVar(&opts.Select, "select", "", "project a single field instead of whole documents")
	cmd.Flags().StringVar(&opts.Order, "order", "", "field to order by")
	cmd.Flags().BoolVar(&opts.Desc, "desc", false, "order descending")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of records")
	cmd.Flags().IntVar(&opts.Skip, "skip", 0, "number of records to skip")
	cmd.Flags().BoolVar(&opts.First, "first", false, "print only the first match")

	return cmd
}

func runQuery(cmd *cobra.Command, opts *QueryOptions, table string) error {
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
	if opts.Order != "" {
		if opts.Desc {
			q = q.OrderByDescending(ParseSelector(opts.Order))
		} else {
			q = q.OrderBy(ParseSelector(opts.Order))
		}
	}
	if opts.Skip > 0 {
		q = q.Skip(opts.Skip)
	}
	if opts.Limit > 0 {
		q = q.Take(opts.Limit)
	}

	if opts.Select != "" {
		return printRows(cmd, ctx, query.Select[any](q, ParseSelector(opts.Select)), opts.First)
	}
	return printRows(cmd, ctx, q, opts.First)
}

func printRows[T any](cmd *cobra.Command, ctx context.Context, q *query.Query[T], first bool) error {
	enc := json.NewEncoder(cmd.OutOrStdout())

	if first {
		row, err := q.TryFirst(ctx)
		if err != nil {
			return err
		}
		if row == nil {
			return fmt.Errorf("no matching records")
		}
		return enc.Encode(*row)
	}

	rows, err := q.ToList(ctx)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	return nil
}
