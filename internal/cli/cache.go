package cli

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/glorpus-work/geofetch/internal/logger"
	"github.com/glorpus-work/geofetch/pkg/cache"
	"github.com/glorpus-work/geofetch/pkg/retriever"
	"github.com/spf13/cobra"
)

// NewCacheCmd creates the cache command with subcommands
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the download cache",
		Long:  "Clean, show information about, export and import the download cache",
	}

	cmd.AddCommand(
		newCacheCleanCmd(),
		newCacheInfoCmd(),
		newCacheDirCmd(),
		newCachePathCmd(),
		newCacheExportCmd(),
		newCacheImportCmd(),
	)

	return cmd
}

func newCacheCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Clean the download cache",
		Long:  "Remove every cached entry to free up disk space",
		Args:  cobra.NoArgs,
		RunE:  runCacheClean,
	}
}

func newCacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache information",
		Long:  "Display size, entry count and age of the download cache",
		Args:  cobra.NoArgs,
		RunE:  runCacheInfo,
	}
}

func newCacheDirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dir",
		Short: "Show cache directory path",
		Long:  "Display the path to the cache directory",
		Args:  cobra.NoArgs,
		RunE:  runCacheDir,
	}
}

func newCachePathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path URL",
		Short: "Show the cache file for a URL",
		Long:  "Display the path a URL is cached under, whether or not it is cached yet",
		Args:  cobra.ExactArgs(1),
		RunE:  runCachePath,
	}
}

func newCacheExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE",
		Short: "Export the cache to an archive",
		Long:  "Write every cached entry into a gzip-compressed tar archive",
		Args:  cobra.ExactArgs(1),
		RunE:  runCacheExport,
	}
}

func newCacheImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import cache entries from an archive",
		Long:  "Restore cached entries from an archive created by 'cache export'",
		Args:  cobra.ExactArgs(1),
		RunE:  runCacheImport,
	}
}

func loadCacheOperation() (*cache.Store, *cache.Operation, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := newStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	return store, cache.NewOperation(store), nil
}

func runCacheClean(cmd *cobra.Command, _ []string) error {
	_, op, err := loadCacheOperation()
	if err != nil {
		return err
	}

	msg, err := op.Clean()
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

func runCacheInfo(cmd *cobra.Command, _ []string) error {
	_, op, err := loadCacheOperation()
	if err != nil {
		return err
	}

	info, err := op.GetInfo()
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), info)
	return nil
}

func runCacheDir(cmd *cobra.Command, _ []string) error {
	_, op, err := loadCacheOperation()
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), op.GetDirectory())
	return nil
}

func runCachePath(cmd *cobra.Command, args []string) error {
	store, _, err := loadCacheOperation()
	if err != nil {
		return err
	}

	u, err := retriever.ParseURL(args[0])
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), store.Path(u))
	return nil
}

func runCacheExport(cmd *cobra.Command, args []string) error {
	store, _, err := loadCacheOperation()
	if err != nil {
		return err
	}

	out, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("failed to create archive %s: %w", args[0], err)
	}

	n, err := store.Export(cmd.Context(), out)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(args[0])
		return err
	}

	size := ""
	if fi, statErr := os.Stat(args[0]); statErr == nil {
		size = humanize.IBytes(uint64(fi.Size()))
	}
	logger.Success("Cache exported", logger.Fields{"archive": args[0], "entries": n, "size": size})
	return nil
}

func runCacheImport(cmd *cobra.Command, args []string) error {
	store, _, err := loadCacheOperation()
	if err != nil {
		return err
	}

	n, err := store.Import(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	logger.Success("Cache imported", logger.Fields{"archive": args[0], "entries": n})
	return nil
}
