package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/overlaysmith/pkg/tree"
)

// passFunc runs one tree pass.
type passFunc func(ctx context.Context, s *tree.Synchronizer, opts tree.Options) (*tree.Report, error)

// runPass loads the environment and database, runs fn and prints its report.
func (c *CLI) runPass(cmd *cobra.Command, title string, opts tree.Options, fn passFunc) (*tree.Report, error) {
	e, err := c.loadEnv()
	if err != nil {
		return nil, err
	}
	d, err := e.openDB()
	if err != nil {
		return nil, err
	}

	if opts.Packages == nil {
		opts.Packages = e.repo.Packages
	}
	opts.CleanDB = opts.CleanDB || e.repo.CleanDB

	rep, err := fn(cmd.Context(), c.synchronizer(e, d), opts)
	if err != nil {
		return nil, err
	}

	printSuccess("%s %s", title, StyleHighlight.Render(e.overlay))
	printReport(rep)
	return rep, nil
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		erase bool
		pick  bool
	)

	cmd := &cobra.Command{
		Use:   "generate NAME",
		Short: "Add a package and its dependencies to the overlay",
		Long: `Write every version of NAME and of the packages it depends on into the
overlay, along with the eclasses they inherit, and digest them with the
manifest tool. The rest of the overlay is left alone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.runPass(cmd, "Generated", tree.Options{Erase: erase},
				func(ctx context.Context, s *tree.Synchronizer, opts tree.Options) (*tree.Report, error) {
					return withPick(ctx, pick, args[0], func(name string) (*tree.Report, error) {
						return s.Add(ctx, name, opts)
					})
				})
			return err
		},
	}

	cmd.Flags().BoolVarP(&erase, "erase", "e", false, "remove packages the manifest tool fails on")
	cmd.Flags().BoolVar(&pick, "pick", false, "choose interactively when the name is ambiguous")

	return cmd
}

// generateTreeCommand creates the generate-tree command.
func (c *CLI) generateTreeCommand() *cobra.Command {
	var opts tree.Options

	cmd := &cobra.Command{
		Use:   "generate-tree",
		Short: "Regenerate the whole overlay from scratch",
		Long: `Remove everything in the overlay except hidden entries and write it again:
repository metadata, every package of the database (or of the configured
package list and its dependencies), every eclass and the Manifests.

Without --digest the Manifests are computed in-process; with it the manifest
tool is run on every package.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.runPass(cmd, "Generated", opts,
				func(ctx context.Context, s *tree.Synchronizer, opts tree.Options) (*tree.Report, error) {
					return s.Generate(ctx, opts)
				})
			return err
		},
	}

	cmd.Flags().BoolVarP(&opts.Digest, "digest", "d", false, "digest with the manifest tool")
	cmd.Flags().BoolVarP(&opts.Erase, "erase", "e", false, "remove packages the manifest tool fails on")

	return cmd
}

// updateTreeCommand creates the update-tree command.
func (c *CLI) updateTreeCommand() *cobra.Command {
	var opts tree.Options

	cmd := &cobra.Command{
		Use:   "update-tree",
		Short: "Bring the overlay up to date with the database",
		Long: `Rewrite the packages of the database in place, delete descriptors of versions
that are gone, and remove package directories the database no longer has
(unless --keep).

With --digest, newly added versions are digested by the manifest tool and
the rest in-process.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.runPass(cmd, "Updated", opts,
				func(ctx context.Context, s *tree.Synchronizer, opts tree.Options) (*tree.Report, error) {
					return s.Update(ctx, opts)
				})
			return err
		},
	}

	cmd.Flags().BoolVarP(&opts.Digest, "digest", "d", false, "digest new versions with the manifest tool")
	cmd.Flags().BoolVarP(&opts.Erase, "erase", "e", false, "remove packages the manifest tool fails on")
	cmd.Flags().BoolVarP(&opts.Keep, "keep", "k", false, "keep package directories no longer in the database")

	return cmd
}
