// Command handvox turns hand gestures seen by a camera into a voxel scene.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/handvox/internal/app"
	"github.com/ayusman/handvox/internal/capture"
	"github.com/ayusman/handvox/internal/config"
	"github.com/ayusman/handvox/internal/detector"
	"github.com/ayusman/handvox/internal/server"
	"github.com/ayusman/handvox/internal/store"
	"github.com/ayusman/handvox/internal/tray"
)

const shutdownTimeout = 5 * time.Second

func init() {
	// The tray event loop must run on the main OS thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(*configPath, logger); err != nil {
		logger.Error("handvox failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, logger *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	journal, err := openJournal(cfg)
	if err != nil {
		return err
	}
	if journal != nil {
		defer journal.Close()
		logger.Info("journal opened", "path", journal.Path())
	}

	source := capture.NewHandSource(capture.NewCamera(capture.CameraConfig{
		DeviceID: cfg.Capture.CameraID,
		Width:    cfg.Capture.Width,
		Height:   cfg.Capture.Height,
		FPS:      cfg.Capture.FPS,
	}), newDetector(cfg, logger))
	if err := source.Open(); err != nil {
		return fmt.Errorf("open camera %d: %w", cfg.Capture.CameraID, err)
	}
	defer source.Close()

	a, err := app.New(app.Config{
		Source:       source,
		Store:        journal,
		GridSize:     cfg.Voxels.GridSize,
		Policy:       cfg.Policy(),
		Bounds:       cfg.Bounds(),
		Thresholds:   cfg.Thresholds(),
		Gate:         cfg.GateConfig(),
		BurstSize:    cfg.Gestures.BurstSize,
		TickInterval: cfg.TickInterval(),
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	staticDir := cfg.Server.StaticDir
	if staticDir == "" {
		staticDir = findWebDir()
	}
	if staticDir != "" {
		logger.Info("serving viewer", "dir", staticDir)
	}

	srv := server.New(server.Config{
		App:       a,
		StaticDir: staticDir,
		Store:     journal,
		Frames:    source,
		Logger:    logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(); err != nil {
		return err
	}

	var serveErr error
	served := make(chan struct{})
	go func() {
		defer close(served)
		if err := srv.ListenAndServe(cfg.Server.Addr); err != nil {
			serveErr = err
			stop()
		}
	}()

	if cfg.Tray {
		// The tray owns the main goroutine until it quits.
		t := newTray(a, cfg.Server.Addr, stop, logger)
		go func() {
			<-ctx.Done()
			t.Quit()
		}()
		t.Run()
		stop()
	} else {
		<-ctx.Done()
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", "error", err)
	}
	<-served

	return serveErr
}

func openJournal(cfg *config.Config) (*store.Store, error) {
	if !cfg.Storage.Journal {
		return nil, nil
	}

	dir, err := cfg.DataDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	journal, err := store.New(filepath.Join(dir, "handvox.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return journal, nil
}

// newDetector prefers the MediaPipe landmarker and falls back to a detector
// that never sees a hand, so the viewer and API still come up.
func newDetector(cfg *config.Config, logger *slog.Logger) detector.Detector {
	d, err := detector.NewMediaPipeDetector(detector.Config{
		MinConfidence: cfg.Detector.MinConfidence,
		Script:        cfg.Detector.Script,
		IdleTimeout:   time.Duration(cfg.Detector.IdleTimeoutS) * time.Second,
	}, logger)
	if err != nil {
		if errors.Is(err, detector.ErrScriptNotFound) {
			logger.Warn("hand landmarker not found, gestures are disabled", "error", err)
		} else {
			logger.Warn("hand landmarker unavailable", "error", err)
		}
		return detector.NewMockDetector()
	}
	return d
}

func newTray(a *app.App, addr string, quit func(), logger *slog.Logger) *tray.Tray {
	t := tray.New()
	t.OnToggle(func(enabled bool) {
		a.SetEnabled(enabled)
		logger.Info("detection toggled", "enabled", enabled)
	})
	t.OnOpenViewer(func() {
		if err := openBrowser(viewerURL(addr)); err != nil {
			logger.Warn("open viewer", "error", err)
		}
	})
	t.OnQuit(quit)

	if updates, err := a.Subscribe("tray"); err == nil {
		go t.Follow(updates)
	}
	return t
}

// viewerURL turns a listen address into a URL a local browser can open.
func viewerURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// findWebDir searches for the viewer directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.handvox/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".handvox", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
