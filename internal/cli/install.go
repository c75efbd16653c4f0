package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/overlaysmith/pkg/mangler"
	"github.com/matzehuels/overlaysmith/pkg/tree"
)

// installCommand creates the install command.
func (c *CLI) installCommand() *cobra.Command {
	var (
		erase bool
		pick  bool
	)

	cmd := &cobra.Command{
		Use:   "install NAME [-- FLAGS...]",
		Short: "Generate a package and install it with the package manager",
		Long: `Add NAME and its dependencies to the overlay like generate, then hand it to
the configured package manager. Arguments after -- are passed through.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, flags := args[0], args[1:]

			e, err := c.loadEnv()
			if err != nil {
				return err
			}
			pm, err := mangler.New(e.cfg.PackageManager, c.Logger)
			if err != nil {
				return err
			}

			var target string
			_, err = c.runPass(cmd, "Generated", tree.Options{Erase: erase},
				func(ctx context.Context, s *tree.Synchronizer, opts tree.Options) (*tree.Report, error) {
					return withPick(ctx, pick, name, func(n string) (*tree.Report, error) {
						category, pkgname, err := s.Resolver.Locate(n)
						if err != nil {
							return nil, err
						}
						target = category + "/" + pkgname
						return s.Add(ctx, target, opts)
					})
				})
			if err != nil {
				return err
			}

			printInfo("Installing %s with %s", StyleHighlight.Render(target), pm.Name())
			if err := pm.Install(cmd.Context(), target, flags...); err != nil {
				return fmt.Errorf("install %s: %w", target, err)
			}
			printSuccess("Installed %s", target)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&erase, "erase", "e", false, "remove packages the manifest tool fails on")
	cmd.Flags().BoolVar(&pick, "pick", false, "choose interactively when the name is ambiguous")

	return cmd
}
