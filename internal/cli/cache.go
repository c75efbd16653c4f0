package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/overlaysmith/pkg/cache"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the database download cache",
		Long: `Synced database archives are kept in the user cache directory so that
re-running sync does not download them again. Use sync --refresh to bypass
the cache for one run.`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the cache directory",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), cacheDir())
				return err
			},
		},
		&cobra.Command{
			Use:   "info",
			Short: "Show how many archives are cached",
			Args:  cobra.NoArgs,
			RunE:  c.runCacheInfo,
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every cached archive",
			Args:  cobra.NoArgs,
			RunE:  c.runCacheClear,
		},
	)
	return cmd
}

// openCache opens the cache directory, or returns nil if it was never
// created.
func openCache() (*cache.FileCache, error) {
	if _, err := os.Stat(cacheDir()); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return cache.NewFileCache(cacheDir())
}

func (c *CLI) runCacheInfo(cmd *cobra.Command, _ []string) error {
	fc, err := openCache()
	if err != nil || fc == nil {
		if err == nil {
			printInfo("Cache is empty")
		}
		return err
	}
	n, size, err := fc.Stats()
	if err != nil {
		return err
	}
	printKeyValue("Directory", fc.Dir())
	printKeyValue("Archives", fmt.Sprint(n))
	printKeyValue("Size", humanBytes(size))
	return nil
}

func (c *CLI) runCacheClear(cmd *cobra.Command, _ []string) error {
	fc, err := openCache()
	if err != nil || fc == nil {
		if err == nil {
			printInfo("Cache is empty")
		}
		return err
	}
	n, err := fc.Clear()
	if err != nil {
		return err
	}
	c.Logger.Debug("cache cleared", "dir", fc.Dir(), "entries", n)
	printSuccess("Cleared %d cached archives", n)
	printDetail("Directory: %s", fc.Dir())
	return nil
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
