package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"phone-sales-dashboard/config"
	"phone-sales-dashboard/metrics"
	"phone-sales-dashboard/models"
	"phone-sales-dashboard/render"
	"phone-sales-dashboard/services"
	"phone-sales-dashboard/storage"
	"phone-sales-dashboard/utils"
	"phone-sales-dashboard/web"
)

const usage = `usage: phone-sales-dashboard <command> [args]

commands:
  serve                              run the HTTP dashboard (default)
  import <file.csv>                  clean and store a sales CSV
  export <dir> [csv,xlsx,pdf]        write the full dataset in each format
  generate <file.csv> [rows] [seed]  write a synthetic sales CSV
  create-admin <email> <password>    create an administrator account
`

func main() {
	cfg := config.Load()
	logger := utils.NewLoggerWithLevel(cfg.LogLevel, cfg.IsProduction())
	defer logger.Sync()

	cmd, args := "serve", os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd {
	case "serve":
		err = runServe(ctx, cfg, logger)
	case "import":
		err = runImport(ctx, cfg, logger, args)
	case "export":
		err = runExport(ctx, cfg, logger, args)
	case "generate":
		err = runGenerate(logger, args)
	case "create-admin":
		err = runCreateAdmin(ctx, cfg, logger, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		logger.Error("%s failed: %v", cmd, err)
		logger.Sync()
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg *config.Config, logger *utils.Logger) (*storage.PostgresStore, error) {
	store, err := storage.NewPostgresStore(ctx, cfg.DSN(), logger)
	if err != nil {
		logger.Error("Make sure PostgreSQL is running: docker compose up -d")
		return nil, err
	}
	return store, nil
}

// openCache returns nil when Redis is not configured or unreachable; the
// dashboard then computes every request.
func openCache(ctx context.Context, cfg *config.Config, logger *utils.Logger) *storage.ReportCache {
	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL not set, report caching disabled")
		return nil
	}
	cache, err := storage.NewReportCache(ctx, cfg.RedisURL, cfg.CacheTTL)
	if err != nil {
		logger.Warn("Report cache unavailable, continuing without it: %v", err)
		return nil
	}
	return cache
}

func runServe(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	logger.Info("=== Phone Sales Dashboard starting ===")
	logger.Info("Config: port %d | env %s | cache ttl %s | max upload %dMB",
		cfg.Port, cfg.Environment, cfg.CacheTTL, cfg.MaxUploadMB)

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	var (
		reportCache services.ReportCache
		invalidator services.CacheInvalidator
	)
	if cache := openCache(ctx, cfg, logger); cache != nil {
		defer cache.Close()
		reportCache, invalidator = cache, cache
	}

	srv := web.NewServer(web.Deps{
		Config:   cfg,
		Reports:  services.NewDashboard(store, reportCache, logger),
		Importer: services.NewImporter(store, invalidator, logger),
		Exports:  store,
		Users:    store,
		PDF:      render.NewPDFRenderer(cfg.ChromeBin, cfg.PDFMaxAttempts, logger),
		Logger:   logger,
	})

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening on %s", httpSrv.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func runImport(ctx context.Context, cfg *config.Config, logger *utils.Logger, args []string) error {
	if len(args) < 1 {
		return errors.New("import needs a CSV path")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	raw, err := storage.ReadSales(f)
	if err != nil {
		return err
	}
	logger.Info("Read %d raw rows from %s", len(raw), args[0])

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	var invalidator services.CacheInvalidator
	if cache := openCache(ctx, cfg, logger); cache != nil {
		defer cache.Close()
		invalidator = cache
	}

	res, err := services.NewImporter(store, invalidator, logger).Import(ctx, raw)
	if err != nil {
		return err
	}
	fmt.Printf("\n  Done. Batch %s: %d rows, %d new brands, %d new models\n\n",
		res.BatchID, res.Rows, res.NewBrands, res.NewModels)
	return nil
}

func runExport(ctx context.Context, cfg *config.Config, logger *utils.Logger, args []string) error {
	if len(args) < 1 {
		return errors.New("export needs an output directory")
	}
	dir := args[0]
	formats := []string{"csv", "xlsx", "pdf"}
	if len(args) > 1 {
		formats = strings.Split(strings.ToLower(args[1]), ",")
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	rows, err := store.FetchExportRows(ctx, models.Filter{})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	logger.Info("Exporting %d rows as %s to %s", len(rows), strings.Join(formats, ", "), dir)

	pdf := render.NewPDFRenderer(cfg.ChromeBin, cfg.PDFMaxAttempts, logger)
	pool := utils.NewWorkerPool(cfg.ExportWorkers, 0)

	var (
		mu   sync.Mutex
		errs []error
	)
	stamp := time.Now().Format("20060102_150405")
	for _, format := range formats {
		format := strings.TrimSpace(format)
		path := filepath.Join(dir, fmt.Sprintf("sales_export_%s.%s", stamp, format))
		pool.Submit(func() {
			if err := writeExport(ctx, pdf, format, path, rows); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", format, err))
				mu.Unlock()
				return
			}
			metrics.Exports.WithLabelValues(format).Inc()
			logger.Info("Wrote %s", path)
		})
	}
	pool.Wait()

	return errors.Join(errs...)
}

func writeExport(ctx context.Context, pdf *render.PDFRenderer, format, path string, rows []models.ExportRow) error {
	switch format {
	case "csv":
		w, err := storage.CreateCSVFile(path, storage.ExportHeader)
		if err != nil {
			return err
		}
		if err := w.WriteExport(rows); err != nil {
			_ = w.Close()
			return err
		}
		return w.Close()
	case "xlsx":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := storage.WriteXLSX(f, rows); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	case "pdf":
		doc, err := pdf.Render(ctx, storage.ExportHeader, rows)
		if err != nil {
			return err
		}
		return os.WriteFile(path, doc, 0644)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func runGenerate(logger *utils.Logger, args []string) error {
	if len(args) < 1 {
		return errors.New("generate needs an output CSV path")
	}
	rows := 2000
	seed := time.Now().UnixNano()
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid row count %q", args[1])
		}
		rows = n
	}
	if len(args) > 2 {
		s, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed %q", args[2])
		}
		seed = s
	}

	w, err := storage.CreateCSVFile(args[0], storage.UploadHeader)
	if err != nil {
		return err
	}
	if err := w.WriteRaw(services.NewGenerator(seed, logger).Generate(rows)); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	fmt.Printf("\n  Done. Wrote %d rows to %s\n\n", rows, args[0])
	return nil
}

func runCreateAdmin(ctx context.Context, cfg *config.Config, logger *utils.Logger, args []string) error {
	if len(args) < 2 {
		return errors.New("create-admin needs an email and a password")
	}
	email := strings.ToLower(strings.TrimSpace(args[0]))

	hash, err := web.HashPassword(args[1])
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	user, err := store.CreateUser(ctx, email, hash, models.RoleAdmin)
	if err != nil {
		return err
	}
	logger.Info("Created admin %s (id %d)", user.Email, user.ID)
	return nil
}
