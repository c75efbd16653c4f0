package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/overlaysmith/pkg/db"
	"github.com/matzehuels/overlaysmith/pkg/errors"
	"github.com/matzehuels/overlaysmith/pkg/httputil"
)

// syncCommand creates the sync command.
func (c *CLI) syncCommand() *cobra.Command {
	var (
		uri     string
		refresh bool
		noCache bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Download the package database of a repository",
		Long: `Download the package database of a repository into the overlay.

The archive location is the db_uri of the repository in the config file, or
--uri. Downloads are cached for a day; use --refresh to bypass the cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.loadEnv()
			if err != nil {
				return err
			}
			if uri == "" {
				uri = e.repo.DBURI
			}
			if uri == "" {
				return errors.New(errors.ErrCodeInvalidConfig, "no db_uri configured for repository %s; pass --uri", e.repository)
			}

			store, err := newCache(noCache)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			syncer := &db.Syncer{
				Fetcher: &httputil.Fetcher{MaxSize: 512 << 20},
				Cache:   store,
				Refresh: refresh,
				Logger:  c.Logger,
			}

			prog := newProgress(c.Logger)
			spinner := newSpinner(ctx, fmt.Sprintf("Syncing %s...", e.repository))
			if !isTerminal() {
				spinner.Quiet()
			}
			spinner.Start()
			database, err := syncer.Sync(ctx, uri, e.dbDir())
			if err != nil {
				spinner.StopWithError("Sync failed")
				return err
			}
			spinner.Stop()
			prog.done("database synced", "repository", e.repository, "uri", uri, "packages", database.Len())

			e.info.Add(e.repository)
			if err := e.info.Write(e.overlay); err != nil {
				return err
			}

			printSuccess("Synced %s", StyleHighlight.Render(e.repository))
			printKeyValue("Categories", fmt.Sprint(len(database.Categories())))
			printKeyValue("Packages", fmt.Sprint(database.Len()))
			printNewline()
			printNextStep("Generate the overlay", appName+" generate-tree -r "+e.repository)
			return nil
		},
	}

	cmd.Flags().StringVar(&uri, "uri", "", "database archive URL (overrides db_uri)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore the cached archive")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the download cache")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "download timeout (0 disables)")

	return cmd
}
