package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/shoplist/internal/product"
)

// MatchResult is the output of search and suggest.
type MatchResult struct {
	Query   string   `json:"query"`
	Matches []string `json:"matches"`
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search the product vocabulary by substring",
		Long: `Search every product ever added, the way inline queries do.

Without a query the first vocabulary entries are listed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := rootOpts.openEnv(cmd, false)
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")
			res := MatchResult{Query: query, Matches: product.Names(env.engine.Search(query))}
			return env.out.Success(res, printMatches(res, "No products found."))
		},
	}
}

// NewSuggestCommand creates the suggest command.
func NewSuggestCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <name>",
		Short: "Show known products similar to name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := rootOpts.openEnv(cmd, false)
			if err != nil {
				return err
			}
			res := MatchResult{Query: args[0], Matches: product.Names(env.engine.Suggest(args[0]))}
			return env.out.Success(res, printMatches(res, "No similar products."))
		},
	}
}

func printMatches(res MatchResult, empty string) func(io.Writer) {
	return func(w io.Writer) {
		if len(res.Matches) == 0 {
			fmt.Fprintln(w, empty)
			return
		}
		for _, m := range res.Matches {
			fmt.Fprintln(w, m)
		}
	}
}
