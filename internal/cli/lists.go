package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/shoplist/internal/engine"
	"github.com/roach88/shoplist/internal/product"
)

// ListResult is the output of the list command.
type ListResult struct {
	Scope string   `json:"scope"`
	Items []string `json:"items"`
}

// AddedItem is one argument of the add command.
type AddedItem struct {
	Input           string `json:"input"`
	Name            string `json:"name"`
	Result          string `json:"result"` // "added" | "duplicate"
	NewToVocabulary bool   `json:"new_to_vocabulary,omitempty"`
}

// AddResult is the output of the add command.
type AddResult struct {
	Scope string      `json:"scope"`
	Items []AddedItem `json:"items"`
}

// ClearResult is the output of the clear command.
type ClearResult struct {
	Scope   string `json:"scope"`
	Removed int    `json:"removed"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var user int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the current shopping list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := rootOpts.openEnv(cmd, false)
			if err != nil {
				return err
			}
			scope, err := env.scope(user)
			if err != nil {
				return err
			}

			res := ListResult{Scope: string(scope), Items: product.Names(env.engine.List(scope))}
			return env.out.Success(res, func(w io.Writer) {
				if len(res.Items) == 0 {
					fmt.Fprintln(w, "The list is empty.")
					return
				}
				for i, item := range res.Items {
					fmt.Fprintf(w, "%2d. %s\n", i+1, item)
				}
			})
		},
	}
	addUserFlag(cmd, &user)
	return cmd
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	var user int64

	cmd := &cobra.Command{
		Use:   "add <product>...",
		Short: "Add products to the list",
		Long: `Add one or more products to the list.

Each argument is one product. Names are normalized the same way the bot
does it; a product already on the list is reported and skipped.

Example:
  shoplist add milk "rye bread"
  shoplist add --user 42 eggs`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := rootOpts.openEnv(cmd, true)
			if err != nil {
				return err
			}
			defer env.close()
			scope, err := env.scope(user)
			if err != nil {
				return err
			}
			return runAdd(cmd, env, scope, args)
		},
	}
	addUserFlag(cmd, &user)
	return cmd
}

func runAdd(cmd *cobra.Command, env *env, scope product.Scope, args []string) error {
	res := AddResult{Scope: string(scope), Items: make([]AddedItem, 0, len(args))}

	for _, raw := range args {
		added, err := env.engine.Add(cmd.Context(), scope, raw)
		switch {
		case err == nil:
			res.Items = append(res.Items, AddedItem{
				Input:           raw,
				Name:            added.Name.String(),
				Result:          "added",
				NewToVocabulary: added.NewToVocabulary,
			})
		case engine.IsDuplicate(err):
			res.Items = append(res.Items, AddedItem{Input: raw, Name: added.Name.String(), Result: "duplicate"})
		case errors.Is(err, engine.ErrEmptyName):
			_ = env.out.Error(CodeInput, fmt.Sprintf("empty product name %q", raw), nil)
			return WrapExitError(ExitCommandError, "invalid product name", err)
		default:
			_ = env.out.Error(CodePersist, "failed to save the list", err.Error())
			return WrapExitError(ExitFailure, "add failed", err)
		}
	}

	return env.out.Success(res, func(w io.Writer) {
		for _, it := range res.Items {
			if it.Result == "duplicate" {
				fmt.Fprintf(w, "· %s is already on the list\n", it.Name)
				continue
			}
			fmt.Fprintf(w, "+ %s\n", it.Name)
		}
	})
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	var user int64

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Mark the list as done (empties it, keeps the vocabulary)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := rootOpts.openEnv(cmd, true)
			if err != nil {
				return err
			}
			defer env.close()
			scope, err := env.scope(user)
			if err != nil {
				return err
			}

			n, err := env.engine.Clear(cmd.Context(), scope)
			if err != nil {
				_ = env.out.Error(CodePersist, "failed to save the list", err.Error())
				return WrapExitError(ExitFailure, "clear failed", err)
			}

			res := ClearResult{Scope: string(scope), Removed: n}
			return env.out.Success(res, func(w io.Writer) {
				fmt.Fprintf(w, "Removed %d item(s).\n", res.Removed)
			})
		},
	}
	addUserFlag(cmd, &user)
	return cmd
}
