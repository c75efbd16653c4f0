package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/overlaysmith/pkg/deps"
	"github.com/matzehuels/overlaysmith/pkg/errors"
	graphio "github.com/matzehuels/overlaysmith/pkg/io"
	"github.com/matzehuels/overlaysmith/pkg/render/nodelink"
)

// Output formats of the deps command.
const (
	formatText = "text"
	formatDOT  = "dot"
	formatSVG  = "svg"
	formatJSON = "json"
)

// depsCommand creates the deps command.
func (c *CLI) depsCommand() *cobra.Command {
	var (
		format string
		input  string
		output string
		pick   bool
		opts   nodelink.Options
	)

	cmd := &cobra.Command{
		Use:   "deps [NAME...]",
		Short: "Show the dependency closure of packages",
		Long: `Show every package version the named packages transitively depend on.

NAME is either "category/name" or a bare name that only one category contains.
References that could not be followed are listed as skipped.

A resolution saved with --format json can be rendered again with --input,
without a synced database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case formatText, formatDOT, formatSVG, formatJSON:
			default:
				return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (text, dot, svg, json)", format)
			}

			ctx := cmd.Context()
			var (
				res *deps.Resolution
				err error
			)
			switch {
			case input != "" && len(args) > 0:
				return errors.New(errors.ErrCodeInvalidInput, "pass either --input or package names")
			case input != "":
				res, err = graphio.ImportJSON(input)
			case len(args) == 0:
				return errors.New(errors.ErrCodeInvalidInput, "no package names given")
			default:
				res, err = c.resolve(ctx, args, pick)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			switch format {
			case formatDOT:
				_, err = io.WriteString(out, nodelink.ToDOT(res, opts))
			case formatJSON:
				err = graphio.WriteJSON(res, out)
			case formatSVG:
				var svg []byte
				svg, err = nodelink.RenderSVG(ctx, nodelink.ToDOT(res, opts))
				if err == nil {
					_, err = out.Write(svg)
				}
			default:
				err = writeResolution(out, res)
			}
			if err != nil {
				return err
			}
			if output != "" {
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, dot, svg, json")
	cmd.Flags().StringVar(&input, "input", "", "read a resolution saved with --format json")
	cmd.Flags().StringVar(&output, "output", "", "write to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.Collapse, "collapse", false, "one node per category/name instead of per version")
	cmd.Flags().BoolVar(&opts.Skipped, "skipped", false, "draw skipped references")
	cmd.Flags().BoolVar(&pick, "pick", false, "choose interactively when a name is ambiguous")

	return cmd
}

// resolve merges the resolutions of names over the synced database.
func (c *CLI) resolve(ctx context.Context, names []string, pick bool) (*deps.Resolution, error) {
	e, err := c.loadEnv()
	if err != nil {
		return nil, err
	}
	d, err := e.openDB()
	if err != nil {
		return nil, err
	}

	resolver := deps.NewResolver(d, c.Logger.Debugf)
	res := &deps.Resolution{Packages: make(deps.Set)}
	for _, name := range names {
		r, err := withPick(ctx, pick, name, func(n string) (*deps.Resolution, error) {
			return resolver.ResolveContext(ctx, n)
		})
		if err != nil {
			return nil, err
		}
		res.Merge(r)
	}
	return res, nil
}

// writeResolution prints the resolved versions, one per line, followed by
// the skipped references.
func writeResolution(w io.Writer, res *deps.Resolution) error {
	for _, p := range res.Packages.Sorted() {
		if _, err := fmt.Fprintln(w, p); err != nil {
			return err
		}
	}
	for _, s := range res.Skipped {
		from := "(root)"
		if s.From.Name != "" {
			from = s.From.String()
		}
		if _, err := fmt.Fprintf(w, "skipped %s from %s: %s\n", s.Ref, from, s.Reason); err != nil {
			return err
		}
	}
	return nil
}
