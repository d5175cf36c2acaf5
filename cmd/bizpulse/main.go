package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/TobiSchelling/bizpulse/internal/compose"
	"github.com/TobiSchelling/bizpulse/internal/config"
	"github.com/TobiSchelling/bizpulse/internal/logging"
	"github.com/TobiSchelling/bizpulse/internal/pipeline"
	"github.com/TobiSchelling/bizpulse/internal/report"
	"github.com/TobiSchelling/bizpulse/internal/scheduler"
	"github.com/TobiSchelling/bizpulse/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	asMarkdown bool
	cfg        *config.Config
	logger     *logrus.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "bizpulse",
	Short:         "Business metrics reports",
	Long:          "bizpulse aggregates support, content and data-inventory metrics into stored JSON reports.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.New("info", "text")
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		config.LoadEnv(logger)

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		logger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		}
		logger.WithField("config", path).Debug("Loaded config")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	for _, cmd := range []*cobra.Command{supportCmd, contentCmd, qualityCmd, reportCmd, historyCmd} {
		cmd.Flags().BoolVarP(&asMarkdown, "markdown", "m", false, "Print a markdown briefing instead of JSON")
	}

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(supportCmd)
	rootCmd.AddCommand(contentCmd)
	rootCmd.AddCommand(qualityCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scheduleCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("bizpulse", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/bizpulse/",
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
		fmt.Println("Edit it to point at your Help Scout, WordPress and data directories.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and report store status",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Sources:")
		fmt.Printf("  Help Scout: %s\n", helpScoutURL())
		switch cfg.Sources.WordPress.Kind {
		case config.ContentFeed:
			fmt.Printf("  WordPress feed: %s\n", cfg.Sources.WordPress.FeedURL)
		default:
			fmt.Printf("  WordPress REST: %s\n", cfg.Sources.WordPress.BaseURL)
		}
		fmt.Printf("  Inventory root: %s\n", cfg.Sources.Inventory.Root)
		for _, d := range directories() {
			fmt.Printf("    %s: %s\n", d.Name, d.Path)
		}

		fmt.Println("\nSink:")
		if cfg.Sink.Kind == config.SinkAutoMem {
			fmt.Printf("  AutoMem: %s\n", cfg.Sink.AutoMemURL)
		} else {
			fmt.Printf("  SQLite: %s\n", cfg.DBPath())
		}

		if _, err := os.Stat(cfg.DBPath()); err != nil {
			fmt.Println("\nNo local reports stored yet.")
			return nil
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Println("\nStored reports:")
		fmt.Printf("  Total: %d\n", stats.TotalMemories)
		if stats.LatestAt != "" {
			fmt.Printf("  Latest: %s\n", stats.LatestAt)
		}
		tags := make([]string, 0, len(stats.ByTag))
		for tag := range stats.ByTag {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		for _, tag := range tags {
			fmt.Printf("  %s: %d\n", tag, stats.ByTag[tag])
		}
		return nil
	},
}

// --- analysis commands ---

var supportCmd = &cobra.Command{
	Use:   "support",
	Short: "Analyze the last 7 days of support tickets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalysis(cmd.Context(), pipeline.ReportSupport, (*pipeline.Pipeline).SupportAnalysis)
	},
}

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Analyze posts published in the last 30 days",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalysis(cmd.Context(), pipeline.ReportContent, (*pipeline.Pipeline).ContentAnalysis)
	},
}

var qualityCmd = &cobra.Command{
	Use:   "quality",
	Short: "Assess data coverage and source connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalysis(cmd.Context(), pipeline.ReportQuality, (*pipeline.Pipeline).QualityAssessment)
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the comprehensive business intelligence report",
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := wire(prometheus.NewRegistry())
		if err != nil {
			return err
		}
		defer w.Close()

		doc := w.pipeline.ComprehensiveReport(cmd.Context())
		if err := printDocument(pipeline.ReportComprehensive, doc); err != nil {
			return err
		}
		if msg, failed := doc.ErrorMessage(); failed {
			return fmt.Errorf("report failed: %s", msg)
		}
		return nil
	},
}

func runAnalysis(ctx context.Context, name string, run func(*pipeline.Pipeline, context.Context) (report.Document, error)) error {
	w, err := wire(prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer w.Close()

	doc, err := run(w.pipeline, ctx)
	if err != nil {
		return err
	}
	return printDocument(name, doc)
}

func printDocument(name string, doc report.Document) error {
	if asMarkdown {
		out, err := compose.Markdown(compose.Humanize(name), doc)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}
	data, err := doc.Indent()
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// --- history command ---

var (
	historyTag   string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "List stored reports, or print one by ID",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if len(args) == 1 {
			m, err := db.GetMemory(args[0])
			if err != nil {
				return err
			}
			if m == nil {
				return fmt.Errorf("report %s not found", args[0])
			}
			if !asMarkdown {
				fmt.Println(m.Content)
				return nil
			}
			doc, err := report.Parse([]byte(m.Content))
			if err != nil {
				return err
			}
			out, err := compose.Markdown(server.Title(m.Tags), doc)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		}

		memories, err := db.GetMemories(historyTag, historyLimit)
		if err != nil {
			return err
		}
		if len(memories) == 0 {
			fmt.Println("No reports stored. Generate one with: bizpulse report")
			return nil
		}
		for _, m := range memories {
			tags, _ := json.Marshal(m.Tags)
			fmt.Printf("  %s  %s  %-30s %s\n", m.ID, m.CreatedAt, server.Title(m.Tags), tags)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVarP(&historyTag, "tag", "t", "", "Only list reports with this tag")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of reports to list")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web server",
	Long: `Serve stored reports over HTTP.

Pipeline metrics are only exported while reports are generated; use
"bizpulse schedule --serve" for a /metrics endpoint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		srv, err := server.New(db, nil, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(ctx, srv, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to run server on")
}

// --- schedule command ---

var (
	scheduleCron    string
	scheduleTimeout time.Duration
	scheduleServe   bool
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Generate the comprehensive report on a cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := prometheus.NewRegistry()
		w, err := wire(reg)
		if err != nil {
			return err
		}
		defer w.Close()

		spec := cfg.Schedule.Cron
		if scheduleCron != "" {
			spec = scheduleCron
		}

		sched, err := scheduler.New(spec, scheduleTimeout, logger, func(ctx context.Context) {
			doc := w.pipeline.ComprehensiveReport(ctx)
			if msg, failed := doc.ErrorMessage(); failed {
				logger.WithField("error", msg).Error("Scheduled report failed")
			}
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if scheduleServe {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			srv, err := server.New(db, reg, logger)
			if err != nil {
				return err
			}
			go func() {
				if err := server.Serve(ctx, srv, cfg.Server.Port); err != nil {
					logger.WithError(err).Error("Server stopped")
				}
			}()
		}

		fmt.Printf("Scheduled comprehensive report: %s\n", spec)
		fmt.Println("Press Ctrl+C to stop")
		sched.Run(ctx)
		return nil
	},
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleCron, "cron", "", "Override the configured cron expression")
	scheduleCmd.Flags().DurationVar(&scheduleTimeout, "timeout", 10*time.Minute, "Deadline for each scheduled run")
	scheduleCmd.Flags().BoolVar(&scheduleServe, "serve", false, "Also serve stored reports and /metrics")
}
