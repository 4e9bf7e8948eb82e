package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/runlog/internal/config"
	"github.com/verte-zerg/runlog/internal/stats"
	"github.com/verte-zerg/runlog/internal/store"
)

var dbPath string

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Parse a file and save it to the local import history",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
	addDBFlag(cmd)
	return cmd
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved imports",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	addDBFlag(cmd)
	return cmd
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print the report of a saved import",
		Args:  cobra.ExactArgs(1),
		RunE:  runShowCmd,
	}
	addDBFlag(cmd)
	addReportFlags(cmd)
	return cmd
}

func addDBFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&dbPath, "db", "", "history database path (default: $XDG_DATA_HOME/runlog/runlog.db)")
}

func openStore() (*store.Store, error) {
	path := dbPath
	if path == "" {
		path = config.DefaultDBPath()
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	logger.Debug("opened db", "path", path)
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logger.Error("failed to close db", "err", cerr)
	}
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	result, err := parseInput(args[0])
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	id, err := st.InsertImport(context.Background(), filepath.Base(args[0]), time.Now(), result)
	if err != nil {
		return fmt.Errorf("failed to save import: %w", err)
	}
	logger.Info("saved import", "id", id, "records", len(result.Records), "problems", len(result.Errors))
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Imported #%d: %d records, %d problems\n",
		id, len(result.Records), len(result.Errors)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	imports, err := st.ListImports(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list imports: %w", err)
	}
	if err := stats.RenderImports(cmd.OutOrStdout(), imports); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func runShowCmd(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid import id %q", args[0])
	}
	cfg, err := loadReportConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	result, err := st.LoadImport(context.Background(), id)
	if err != nil {
		return fmt.Errorf("failed to load import: %w", err)
	}
	return writeReport(cmd, result, cfg)
}
