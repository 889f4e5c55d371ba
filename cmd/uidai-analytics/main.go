package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/clean"
	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/config"
	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/dataset"
	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/export"
	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/logging"
	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/metrics"
	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/pipeline"
	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/server"
)

var version = "dev"

var (
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
	met        *metrics.Metrics
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "uidai-analytics",
	Short:   "Aadhaar enrolment and update analytics",
	Long:    "uidai-analytics loads Aadhaar enrolment, demographic, and biometric extracts, cleans and scores them, and renders analysis reports.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger, err = logging.New(cfg.Logging.Level, cfg.Logging.Format)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		met = metrics.New()
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scheduleCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("uidai-analytics", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/uidai-analytics/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to point the inputs at your CSV extracts.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configured inputs and generated outputs",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Inputs:")
		printInput("enrolment", cfg.Inputs.Enrolment)
		printInput("demographic", cfg.Inputs.Demographic)
		printInput("biometric", cfg.Inputs.Biometric)

		dir := cfg.GetOutputDir()
		fmt.Printf("\nOutput directory: %s\n", dir)

		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			fmt.Println("  (not created yet; run 'uidai-analytics run')")
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading output directory: %w", err)
		}

		var reports, exports, other int
		for _, e := range entries {
			name := e.Name()
			switch {
			case e.IsDir():
			case strings.HasPrefix(name, "aadhaar_analysis_"):
				reports++
			case strings.HasSuffix(name, "_cleaned.csv") || strings.HasSuffix(name, ".json") || name == "analysis.db":
				exports++
			default:
				other++
			}
		}
		fmt.Printf("  Reports: %d\n", reports)
		fmt.Printf("  Exports: %d\n", exports)
		if other > 0 {
			fmt.Printf("  Other files: %d\n", other)
		}
		return nil
	},
}

func printInput(name, path string) {
	if path == "" {
		fmt.Printf("  %s: (not configured)\n", name)
		return
	}
	marker := "ok"
	if _, err := os.Stat(path); err != nil {
		marker = "missing"
	}
	fmt.Printf("  %s: %s [%s]\n", name, path, marker)
}

// --- run command ---

var (
	skipReport bool
	skipExport bool
	withSQLite bool

	outDir          string
	enrolmentPath   string
	demographicPath string
	biometricPath   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: load -> clean -> aggregate -> score -> detect -> insights -> report -> export",
	RunE: func(cmd *cobra.Command, args []string) error {
		if outDir != "" {
			cfg.Output.Dir = outDir
		}
		if enrolmentPath != "" {
			cfg.Inputs.Enrolment = enrolmentPath
		}
		if demographicPath != "" {
			cfg.Inputs.Demographic = demographicPath
		}
		if biometricPath != "" {
			cfg.Inputs.Biometric = biometricPath
		}
		return runPipeline(pipeline.Options{
			SkipReport: skipReport,
			SkipExport: skipExport,
			SQLite:     withSQLite || cfg.Output.SQLite,
		})
	},
}

func init() {
	runCmd.Flags().BoolVar(&skipReport, "skip-report", false, "Skip report rendering")
	runCmd.Flags().BoolVar(&skipExport, "skip-export", false, "Skip export files")
	runCmd.Flags().BoolVar(&withSQLite, "sqlite", false, "Also write the SQLite artifact")
	runCmd.Flags().StringVar(&outDir, "out", "", "Output directory (default from config)")
	runCmd.Flags().StringVar(&enrolmentPath, "enrolment", "", "Enrolment CSV path (overrides config)")
	runCmd.Flags().StringVar(&demographicPath, "demographic", "", "Demographic CSV path (overrides config)")
	runCmd.Flags().StringVar(&biometricPath, "biometric", "", "Biometric CSV path (overrides config)")
}

func runPipeline(opts pipeline.Options) error {
	pipe := pipeline.New(cfg, logger, met)
	result := pipe.Run(context.Background(), opts)

	for i, step := range result.Steps {
		fmt.Printf("\nStep %d/%d: %s\n", i+1, len(result.Steps), step.Name)
		if step.Err != nil {
			fmt.Printf("  Error: %v\n", step.Err)
		} else {
			fmt.Printf("  %s\n", step.Summary)
		}
	}

	if result.ReportPath != "" {
		fmt.Printf("\nReport: %s\n", result.ReportPath)
		fmt.Println("Run 'uidai-analytics serve' to browse reports.")
	}
	for _, step := range result.Steps {
		if step.Err != nil {
			return fmt.Errorf("pipeline finished with errors")
		}
	}
	return nil
}

// --- clean command ---

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Load and clean the configured datasets, writing cleaned CSVs",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := dataset.Paths{
			Enrolment:   cfg.Inputs.Enrolment,
			Demographic: cfg.Inputs.Demographic,
			Biometric:   cfg.Inputs.Biometric,
		}
		sets, err := dataset.Load(paths, logger)
		if err != nil {
			return err
		}

		cleaner := clean.NewCleaner(logger)
		cleaned, stats, err := cleaner.CleanAll(sets)
		if err != nil {
			return err
		}
		for kind, st := range stats {
			fmt.Printf("%s: %d of %d rows kept, %d duplicates removed, %d dates parsed\n",
				kind, st.RowsOut, st.RowsIn, st.DuplicatesRemoved, st.DatesParsed)
		}

		dir := cfg.GetOutputDir()
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		written, err := export.WriteCleanedCSVs(cleaned, dir, logger)
		if err != nil {
			return err
		}
		for kind, path := range written {
			fmt.Printf("Wrote %s -> %s\n", kind, path)
		}
		return nil
	},
}

// --- report and export commands ---

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the pipeline and render the report, skipping export files",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(pipeline.Options{SkipExport: true})
	},
}

var exportSQLite bool

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Run the pipeline and write export files, skipping the report",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(pipeline.Options{
			SkipReport: true,
			SQLite:     exportSQLite || cfg.Output.SQLite,
		})
	},
}

func init() {
	exportCmd.Flags().BoolVar(&exportSQLite, "sqlite", false, "Also write the SQLite artifact")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local report viewer",
	RunE: func(cmd *cobra.Command, args []string) error {
		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(cfg.GetOutputDir(), met, logger, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

// --- schedule command ---

var cronExpr string

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the pipeline on a cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		expr := cronExpr
		if expr == "" {
			expr = cfg.Schedule.Cron
		}

		c := cron.New()
		_, err := c.AddFunc(expr, func() {
			logger.Info("scheduled run starting", zap.String("cron", expr))
			if err := runPipeline(pipeline.Options{SQLite: cfg.Output.SQLite}); err != nil {
				logger.Error("scheduled run finished with errors", zap.Error(err))
			}
		})
		if err != nil {
			return fmt.Errorf("invalid cron expression %q: %w", expr, err)
		}

		fmt.Printf("Scheduling pipeline runs: %s\n", expr)
		fmt.Println("Press Ctrl+C to stop")
		c.Run()
		return nil
	},
}

func init() {
	scheduleCmd.Flags().StringVar(&cronExpr, "cron", "", "Cron expression (default from config)")
}
