package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/overlaysmith/pkg/atom"
	"github.com/matzehuels/overlaysmith/pkg/db"
	"github.com/matzehuels/overlaysmith/pkg/errors"
)

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "list [CATEGORY]",
		Short: "List the packages of the synced database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.loadEnv()
			if err != nil {
				return err
			}
			d, err := e.openDB()
			if err != nil {
				return err
			}

			categories := d.Categories()
			if len(args) == 1 {
				if !slices.Contains(categories, args[0]) {
					return errors.New(errors.ErrCodeNotFound, "unknown category %q", args[0])
				}
				categories = args[:1]
			}

			rows, err := packageRows(d, categories)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if plain {
				for _, r := range rows {
					for _, v := range r.Versions {
						fmt.Fprintf(out, "%s/%s-%s\n", r.Category, r.Name, v)
					}
				}
				return nil
			}
			fmt.Fprintln(out, packageTable(rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print one category/name-version per line")
	return cmd
}

// packageRows collects the packages of categories with their versions in
// ascending order and the description of the newest one.
func packageRows(d *db.PackageDB, categories []string) ([]packageRow, error) {
	var rows []packageRow
	for _, category := range categories {
		names, err := d.PackageNames(category)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			versions, err := d.PackageVersions(category, name)
			if err != nil {
				return nil, err
			}
			row := packageRow{Category: category, Name: name, Versions: versions}
			if len(versions) > 0 {
				newest := versions[len(versions)-1]
				desc, err := d.Description(atom.Package{Category: category, Name: name, Version: newest})
				if err != nil {
					return nil, err
				}
				row.Description = desc.Description
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}
