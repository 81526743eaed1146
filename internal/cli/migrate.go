package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/shoplist/internal/engine"
	"github.com/roach88/shoplist/internal/store"
)

// MigrateOptions holds flags for the migrate command.
type MigrateOptions struct {
	*RootOptions
	Dedupe bool
	DryRun bool
}

// MigrateResult reports what migrate found and did.
type MigrateResult struct {
	Path                string `json:"path"`
	Mode                string `json:"mode"`
	Shape               string `json:"shape"`
	Migrated            bool   `json:"migrated"`
	CrossUserDuplicates int    `json:"cross_user_duplicates"`
	VocabularyRepaired  int    `json:"vocabulary_repaired"`
	Deduplicated        int    `json:"deduplicated"`
	Written             bool   `json:"written"`
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MigrateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Rewrite the data file in the configured scope's shape",
		Long: `Load the data file, convert it to the shape of the configured
store.scope and write it back.

A per-user file loaded in shared scope is flattened in ascending user id
order. Products listed by several users are kept; --dedupe drops the
repeats, keeping the first occurrence. A corrupt file is never rewritten.

Example:
  shoplist migrate --dry-run
  shoplist migrate --dedupe`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Dedupe, "dedupe", false, "drop repeated products from each list")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print the resulting file instead of writing it")

	return cmd
}

func runMigrate(cmd *cobra.Command, opts *MigrateOptions) error {
	cfg, log, err := opts.loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	out := opts.formatter(cmd)
	if !opts.DryRun {
		if err := lockStore(st, out); err != nil {
			return err
		}
		defer func() { _ = st.Unlock() }()
	}

	state, info, err := st.LoadDetailed(cmd.Context())
	if err != nil {
		return WrapExitError(ExitFailure, "failed to load data file", err)
	}
	if info.Corrupt != nil {
		log.Warnw("refusing to migrate", "path", st.Path(), "kind", engine.KindOf(info.Corrupt))
		_ = out.Error(CodePersist, "data file is corrupt, refusing to rewrite it", info.Corrupt.Error())
		return WrapExitError(ExitFailure, "data file is corrupt", info.Corrupt)
	}

	res := MigrateResult{
		Path:                st.Path(),
		Mode:                string(st.Mode()),
		Shape:               string(info.Shape),
		Migrated:            info.Migrated,
		CrossUserDuplicates: info.CrossUserDuplicates,
		VocabularyRepaired:  info.VocabularyRepaired,
	}
	eng := engine.New(st, state,
		engine.WithLogger(log),
		engine.WithSaveTimeout(cfg.Store.SaveTimeout),
	)
	next := eng.Snapshot()
	if opts.Dedupe {
		res.Deduplicated = next.DedupeLists()
	}

	changed := info.Migrated || info.VocabularyRepaired > 0 || res.Deduplicated > 0 ||
		(info.Shape != store.ShapeNone && string(info.Shape) != string(st.Mode()))

	if opts.DryRun {
		data, err := st.Encode(next)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to encode state", err)
		}
		if out.IsJSON() {
			return out.Success(res, nil)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	if changed {
		out.VerboseLog("writing %s", st.Path())
		if err := eng.Replace(cmd.Context(), next); err != nil {
			_ = out.Error(CodePersist, "failed to write data file", err.Error())
			return WrapExitError(ExitFailure, "migrate failed", err)
		}
		res.Written = true
	}

	return out.Success(res, func(w io.Writer) {
		fmt.Fprintf(w, "%s: found %s shape, scope %s\n", res.Path, res.Shape, res.Mode)
		if res.Migrated {
			fmt.Fprintf(w, "  flattened per-user lists (%d cross-user duplicate(s) kept)\n", res.CrossUserDuplicates)
		}
		if res.VocabularyRepaired > 0 {
			fmt.Fprintf(w, "  restored %d product(s) to the vocabulary\n", res.VocabularyRepaired)
		}
		if res.Deduplicated > 0 {
			fmt.Fprintf(w, "  dropped %d repeated product(s)\n", res.Deduplicated)
		}
		if res.Written {
			fmt.Fprintln(w, "✓ Data file rewritten")
		} else {
			fmt.Fprintln(w, "Nothing to do")
		}
	})
}
