package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"catalog-sync/internal/config"
	"catalog-sync/internal/filewalker"
	"catalog-sync/internal/metrics"
	"catalog-sync/internal/parser"
	"catalog-sync/internal/reconcile"
	"catalog-sync/internal/sheet"
	"catalog-sync/internal/snapshot"
	"catalog-sync/internal/translation"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute runs the CLI application.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "catalog-sync",
		Short: "Reconcile a nested text catalog with a translations workbook",
		Long: `Rebuilds one nested text catalog per target language from the source catalog
and a spreadsheet of translations, and reports texts pending translation,
translations missing per language and spreadsheet rows no longer in the catalog.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if opts.verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVar(&opts.policyFile, "policy", "", "Policy file (YAML), overrides POLICY_FILE")
	flags.IntVar(&opts.workers, "workers", 0, "Concurrent language builds, overrides WORKER_COUNT")
	flags.StringVar(&opts.sheetName, "sheet", "", "Translations sheet name, overrides SHEET_NAME")

	rootCmd.AddCommand(importCmd(opts))
	rootCmd.AddCommand(checkCmd(opts))
	rootCmd.AddCommand(indexCmd())

	return rootCmd
}

type options struct {
	verbose    bool
	policyFile string
	workers    int
	sheetName  string

	snapshotPath string
	pendingDir   string
	databaseURL  string
	metricsFile  string
	strict       bool
}

// apply overlays the flags that were set on cfg.
func (o *options) apply(cmd *cobra.Command, cfg *config.Config) {
	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("policy", &cfg.PolicyFile, o.policyFile)
	set("sheet", &cfg.SheetName, o.sheetName)
	set("snapshot", &cfg.SnapshotPath, o.snapshotPath)
	set("pending-dir", &cfg.PendingDir, o.pendingDir)
	set("database-url", &cfg.DatabaseURL, o.databaseURL)
	set("metrics-file", &cfg.MetricsFile, o.metricsFile)
	if cmd.Flags().Changed("workers") {
		cfg.WorkerCount = o.workers
	}
}

func importCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <catalog|lang-dir> <workbook> <output-dir>",
		Short: "Write one catalog per target language and the reconciliation reports",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			opts.apply(cmd, cfg)
			return runImport(cfg, args[0], args[1], args[2])
		},
	}

	cmd.Flags().StringVar(&opts.snapshotPath, "snapshot", "", "Translation snapshot JSON path, empty string disables (overrides SNAPSHOT_PATH)")
	cmd.Flags().StringVar(&opts.pendingDir, "pending-dir", "", "Directory of the pending report (overrides PENDING_DIR)")
	cmd.Flags().StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL URL for snapshot rows (overrides DATABASE_URL)")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Prometheus textfile path (overrides METRICS_FILE)")

	return cmd
}

func checkCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <catalog|lang-dir> <workbook>",
		Short: "Reconcile without writing any file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			opts.apply(cmd, cfg)
			return runCheck(cfg, args[0], args[1], opts.strict)
		},
	}

	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Also fail on pending, missing or not-found texts")

	return cmd
}

func indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index <catalog>",
		Short: "Print the text to paths index of a catalog as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd.OutOrStdout(), args[0])
		},
	}
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// initDatabase connects to PostgreSQL for the snapshot store.
func initDatabase(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pgPool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}

	if err := pgPool.Ping(ctx); err != nil {
		pgPool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")

	return pgPool, nil
}

// run holds the loaded inputs and the reconciliation result.
type run struct {
	policy *config.Policy
	codec  parser.Parser
	table  *translation.Table
	result *reconcile.Result
}

// reconcileFiles loads the policy, catalog and workbook and reconciles them.
func reconcileFiles(ctx context.Context, cfg *config.Config, catalogPath, workbookPath string) (*run, error) {
	policy, err := config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return nil, err
	}

	catalogPath, err = filewalker.NewWalker().Resolve(catalogPath, policy.SourceLanguage)
	if err != nil {
		return nil, err
	}
	root, codec, err := parser.ParseFile(catalogPath)
	if err != nil {
		return nil, err
	}

	header, rows, err := sheet.ReadRows(workbookPath, cfg.SheetName)
	if err != nil {
		return nil, err
	}
	table, err := translation.FromRows(header, rows, policy.Languages, policy.SourceLanguage)
	if err != nil {
		return nil, fmt.Errorf("build translation table: %w", err)
	}

	log.Info().
		Str("catalog", catalogPath).
		Str("workbook", workbookPath).
		Int("rows", table.Len()).
		Strs("languages", policy.TargetCodes()).
		Msg("Starting reconciliation")

	res, err := reconcile.Run(ctx, reconcile.Input{
		Catalog:   root,
		Table:     table,
		Languages: policy.TargetCodes(),
		Overrides: policy.OverridePaths(),
		Ticket:    policy.Ticket,
		Denylist:  policy.Denylist,
		Workers:   cfg.WorkerCount,
	})
	if err != nil {
		return nil, err
	}
	res.Log()

	return &run{policy: policy, codec: codec, table: table, result: res}, nil
}

// runImport handles the `import` command.
func runImport(cfg *config.Config, catalogPath, workbookPath, outputDir string) error {
	ctx, cancel := setupContext()
	defer cancel()

	r, err := reconcileFiles(ctx, cfg, catalogPath, workbookPath)
	if err != nil {
		return err
	}

	if err := writeCatalogs(r.codec, outputDir, r.result.Outputs); err != nil {
		return err
	}

	if cfg.SnapshotPath != "" {
		if err := snapshot.WriteJSON(cfg.SnapshotPath, r.table, r.policy.TargetCodes()); err != nil {
			return err
		}
	}

	if pending := r.result.Ledger.PendingRecords(); len(pending) > 0 {
		log.Warn().Int("pending", len(pending)).Msg("Texts pending translation")
		if _, err := sheet.WritePending(cfg.PendingDir, r.policy.PendingHeader, pending, time.Now()); err != nil {
			return err
		}
	}

	if cfg.DatabaseURL != "" {
		if err := storeSnapshot(ctx, cfg.DatabaseURL, r); err != nil {
			return err
		}
	}

	if err := writeMetrics(cfg.MetricsFile, r.result); err != nil {
		return err
	}

	return r.result.Err()
}

func writeCatalogs(codec parser.Parser, outputDir string, outputs []reconcile.Output) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	for _, out := range outputs {
		data, err := codec.Encode(out.Catalog)
		if err != nil {
			return fmt.Errorf("encode %s catalog: %w", out.Language, err)
		}
		outPath := filepath.Join(outputDir, out.Language+codec.Ext())
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return fmt.Errorf("write %s catalog: %w", out.Language, err)
		}
		log.Info().
			Str("language", out.Language).
			Str("output", outPath).
			Int("leaves", out.Leaves).
			Msg("Catalog written")
	}
	return nil
}

func storeSnapshot(ctx context.Context, url string, r *run) error {
	pgPool, err := initDatabase(ctx, url)
	if err != nil {
		return err
	}
	defer pgPool.Close()

	store := snapshot.NewStore(pgPool)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	if _, err := store.Save(ctx, r.table, r.policy.TargetCodes()); err != nil {
		return err
	}
	return nil
}

func writeMetrics(path string, res *reconcile.Result) error {
	if path == "" {
		return nil
	}
	rec := metrics.NewRecorder()
	rec.Observe(res, time.Now())
	if err := rec.WriteTextfile(path); err != nil {
		return err
	}
	log.Debug().Str("path", path).Msg("Metrics written")
	return nil
}

// runCheck handles the `check` command.
func runCheck(cfg *config.Config, catalogPath, workbookPath string, strict bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	r, err := reconcileFiles(ctx, cfg, catalogPath, workbookPath)
	if err != nil {
		return err
	}
	if err := r.result.Err(); err != nil {
		return err
	}

	if strict {
		res := r.result
		if n := len(res.Ledger.PendingRecords()) + len(res.Ledger.MissingTexts()) + len(res.NotFound); n > 0 {
			return fmt.Errorf("catalog out of sync: %d pending, %d incomplete, %d not found",
				len(res.Ledger.PendingRecords()), len(res.Ledger.MissingTexts()), len(res.NotFound))
		}
	}
	return nil
}
