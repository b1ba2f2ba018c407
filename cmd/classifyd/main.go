package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"classifyd/internal/common/fsutil"
	"classifyd/internal/config"
	"classifyd/internal/engine"
	"classifyd/internal/httpapi"
	"classifyd/internal/manager"
	"classifyd/internal/registry"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	root := &cobra.Command{
		Use:          "classifyd",
		Short:        "Cached ONNX image-classification server",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	var (
		configPath string
		addr       string
		modelsDir  string
		modelPath  string
		labelsPath string
		ortLib     string
		logLevel   string
		maxBodyMB  int
		corsOn     bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the classification HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Config{
				Addr:           addr,
				ModelsDir:      modelsDir,
				ModelPath:      modelPath,
				LabelsPath:     labelsPath,
				ORTLibraryPath: ortLib,
				MaxBodyMB:      maxBodyMB,
				LogLevel:       logLevel,
			}
			if configPath != "" {
				fileCfg, err := config.Load(configPath)
				if err != nil {
					return fmt.Errorf("load config %s: %w", configPath, err)
				}
				// Flags (and their env defaults) win over the file.
				cfg = mergeConfig(fileCfg, cfg)
			}
			return runServe(cfg, corsOn)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", os.Getenv("CLASSIFYD_CONFIG"), "Path to a yaml/json/toml config file")
	cmd.Flags().StringVar(&addr, "addr", envOr("CLASSIFYD_ADDR", ":8080"), "HTTP listen address, e.g. :8080")
	cmd.Flags().StringVar(&modelsDir, "models-dir", envOr("CLASSIFYD_MODELS_DIR", "~/models/vision"), "Directory to scan for *.onnx model files")
	cmd.Flags().StringVar(&modelPath, "model", os.Getenv("CLASSIFYD_MODEL"), "Model file to load at startup (optional)")
	cmd.Flags().StringVar(&labelsPath, "labels", os.Getenv("CLASSIFYD_LABELS"), "Label file to load at startup (optional)")
	cmd.Flags().StringVar(&ortLib, "ort-library", os.Getenv("CLASSIFYD_ORT_LIBRARY"), "Path to the onnxruntime shared library (optional)")
	cmd.Flags().StringVar(&logLevel, "log-level", envOr("CLASSIFYD_LOG_LEVEL", "info"), "Log level: debug|info|error|off")
	cmd.Flags().IntVar(&maxBodyMB, "max-body-mb", 10, "Maximum request body size in MB")
	cmd.Flags().BoolVar(&corsOn, "cors", false, "Enable permissive CORS for browser clients")
	return cmd
}

// mergeConfig overlays non-zero fields of over on top of base.
func mergeConfig(base, over config.Config) config.Config {
	out := base
	if over.Addr != "" {
		out.Addr = over.Addr
	}
	if over.ModelsDir != "" {
		out.ModelsDir = over.ModelsDir
	}
	if over.ModelPath != "" {
		out.ModelPath = over.ModelPath
	}
	if over.LabelsPath != "" {
		out.LabelsPath = over.LabelsPath
	}
	if over.ORTLibraryPath != "" {
		out.ORTLibraryPath = over.ORTLibraryPath
	}
	if over.MaxBodyMB != 0 {
		out.MaxBodyMB = over.MaxBodyMB
	}
	if over.LogLevel != "" {
		out.LogLevel = over.LogLevel
	}
	return out
}

func parseZerologLevel(s string) zerolog.Level {
	switch s {
	case "debug":
		return zerolog.DebugLevel
	case "error":
		return zerolog.ErrorLevel
	case "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// preloadPath expands a startup path and verifies it exists. Returns ""
// (after logging a warning) when the file is absent, so startup continues
// without the preload.
func preloadPath(logger zerolog.Logger, what, path string) string {
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msgf("%s preload skipped", what)
		return ""
	}
	if !fsutil.PathExists(p) {
		logger.Warn().Str("path", p).Msgf("%s preload skipped, file not found", what)
		return ""
	}
	return p
}

func runServe(cfg config.Config, corsOn bool) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger().
		Level(parseZerologLevel(cfg.LogLevel))

	reg, err := registry.LoadDir(cfg.ModelsDir)
	if err != nil {
		// A missing models dir is not fatal: models can still be loaded by path.
		logger.Warn().Err(err).Str("dir", cfg.ModelsDir).Msg("models dir scan failed, registry is empty")
		reg = nil
	}

	eng, err := engine.NewORT(cfg.ORTLibraryPath)
	if err != nil {
		return fmt.Errorf("initialize engine: %w", err)
	}

	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Registry: reg,
		Engine:   eng,
	})

	if cfg.LabelsPath != "" {
		p := preloadPath(logger, "labels", cfg.LabelsPath)
		if p != "" {
			if n, err := mgr.LoadLabelsFile(p); err != nil {
				logger.Warn().Err(err).Str("path", p).Msg("label preload failed")
			} else {
				logger.Info().Int("count", n).Str("path", p).Msg("labels loaded")
			}
		}
	}
	if cfg.ModelPath != "" {
		p := preloadPath(logger, "model", cfg.ModelPath)
		if p != "" {
			if _, err := mgr.Load(p); err != nil {
				logger.Warn().Err(err).Str("path", p).Msg("model preload failed")
			} else {
				logger.Info().Str("path", p).Msg("model loaded")
			}
		}
	}

	httpapi.SetLogger(logger)
	if cfg.MaxBodyMB > 0 {
		httpapi.SetMaxBodyBytes(int64(cfg.MaxBodyMB) << 20)
	}
	if corsOn {
		httpapi.SetCORSOptions(true, []string{"*"}, []string{"GET", "POST", "OPTIONS"}, []string{"Content-Type", "X-Log-Level"})
	}

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)

	mux := httpapi.NewMux(mgr)
	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Int("models", len(reg)).Msg("classifyd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	cancelBase()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
	if err := mgr.Close(); err != nil {
		logger.Error().Err(err).Msg("session teardown error")
	}
	if err := eng.Close(); err != nil {
		logger.Error().Err(err).Msg("engine teardown error")
	}
	return nil
}
