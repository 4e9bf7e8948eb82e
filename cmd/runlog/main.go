// Package main provides the CLI entrypoint for runlog.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/runlog/internal/config"
	"github.com/verte-zerg/runlog/internal/ingest"
	"github.com/verte-zerg/runlog/internal/logging"
	"github.com/verte-zerg/runlog/internal/model"
	"github.com/verte-zerg/runlog/internal/stats"
	"github.com/verte-zerg/runlog/internal/statsui"
)

const (
	defaultWindow     = 7
	defaultTop        = 5
	defaultPlotHeight = 10
)

var (
	verbose bool
	logger  = logging.New(os.Stderr, false)

	reportPerson     string
	reportWindow     int
	reportTop        int
	reportPlotHeight int

	cleanOutput string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "runlog [file]",
		Short:         "Running log CSV cleaner and dashboard",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.MaximumNArgs(1),
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger = logging.New(cmd.ErrOrStderr(), verbose)
		},
		RunE: runRootCmd,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	addReportFlags(rootCmd)

	rootCmd.AddCommand(newDashboardCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newCleanCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newSampleCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&reportPerson, "person", "", "show a single person")
	cmd.Flags().IntVar(&reportWindow, "window", defaultWindow, "rolling average window in days")
	cmd.Flags().IntVar(&reportTop, "top", defaultTop, "leaderboard size")
	cmd.Flags().IntVar(&reportPlotHeight, "plot-height", defaultPlotHeight, "chart height in rows")
}

func runRootCmd(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	return runDashboardCmd(cmd, args)
}

func newDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard <file>",
		Short: "Open the interactive dashboard for a CSV or XLSX file",
		Args:  cobra.ExactArgs(1),
		RunE:  runDashboardCmd,
	}
	addReportFlags(cmd)
	return cmd
}

func runDashboardCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadReportConfig(cmd)
	if err != nil {
		return err
	}
	result, err := parseInput(args[0])
	if err != nil {
		return err
	}
	m := statsui.NewModel(filepath.Base(args[0]), result, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <file>",
		Short: "Print statistics for a CSV or XLSX file",
		Args:  cobra.ExactArgs(1),
		RunE:  runReportCmd,
	}
	addReportFlags(cmd)
	return cmd
}

func runReportCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadReportConfig(cmd)
	if err != nil {
		return err
	}
	result, err := parseInput(args[0])
	if err != nil {
		return err
	}
	return writeReport(cmd, result, cfg)
}

func writeReport(cmd *cobra.Command, result model.ParseResult, cfg model.ReportConfig) error {
	report := stats.BuildReport(result, cfg.Person)
	if cfg.Person != "" && len(report.Groups.Get(cfg.Person)) == 0 {
		logger.Warn("no runs for person", "person", cfg.Person)
	}
	if err := stats.RenderReport(cmd.OutOrStdout(), report, cfg, 0, false); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean <file>",
		Short: "Write the validated records as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  runCleanCmd,
	}
	cmd.Flags().StringVarP(&cleanOutput, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func runCleanCmd(cmd *cobra.Command, args []string) (err error) {
	result, err := parseInput(args[0])
	if err != nil {
		return err
	}
	if err := stats.RenderErrors(cmd.ErrOrStderr(), result.Errors); err != nil {
		return fmt.Errorf("failed to write problems: %w", err)
	}

	out := cmd.OutOrStdout()
	if cleanOutput != "" {
		f, ferr := os.Create(cleanOutput)
		if ferr != nil {
			return fmt.Errorf("failed to create %s: %w", cleanOutput, ferr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close %s: %w", cleanOutput, cerr)
			}
		}()
		out = f
	}
	if err := ingest.WriteCSV(out, result.Records); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	logger.Debug("wrote cleaned records", "records", len(result.Records), "output", cleanOutput)
	return nil
}

func newSampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Print a sample CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := fmt.Fprint(cmd.OutOrStdout(), ingest.SampleCSV); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := writeConfigTemplate(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// writeConfigTemplate creates the config file unless it already exists.
func writeConfigTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	logger.Info("created config", "path", path)
	return nil
}

func parseInput(path string) (model.ParseResult, error) {
	result, err := ingest.ParseFile(path)
	if err != nil {
		return model.ParseResult{}, err
	}
	logger.Debug("parsed file", "path", path, "records", len(result.Records), "problems", len(result.Errors))
	return result, nil
}

func loadReportConfig(cmd *cobra.Command) (model.ReportConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.ReportConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "window", &reportWindow, fileCfg.Report.Window)
	applyIntConfig(cmd, "top", &reportTop, fileCfg.Report.Top)
	applyIntConfig(cmd, "plot-height", &reportPlotHeight, fileCfg.Report.PlotHeight)
	applyStringConfig(cmd, "person", &reportPerson, fileCfg.Dashboard.Person)

	cfg := model.ReportConfig{
		Person:     strings.TrimSpace(reportPerson),
		Window:     reportWindow,
		Top:        reportTop,
		PlotHeight: reportPlotHeight,
	}
	if err := validateReportConfig(cfg); err != nil {
		return model.ReportConfig{}, err
	}
	logger.Debug("report config", "window", cfg.Window, "top", cfg.Top, "plot_height", cfg.PlotHeight, "person", cfg.Person)
	return cfg, nil
}

func validateReportConfig(cfg model.ReportConfig) error {
	if cfg.Window < 1 {
		return fmt.Errorf("--window must be >= 1")
	}
	if cfg.Top < 0 {
		return fmt.Errorf("--top must be >= 0")
	}
	if cfg.PlotHeight < 2 {
		return fmt.Errorf("--plot-height must be >= 2")
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# runlog configuration
# Uncomment a value to enable it. CLI flags override config values.

[report]
# window = %d             # Rolling average window in days
# top = %d                # Leaderboard size
# plot-height = %d       # Chart height in rows

[dashboard]
# person = ""            # Preselected person
`,
		defaultWindow,
		defaultTop,
		defaultPlotHeight,
	)
}
