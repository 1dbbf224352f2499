package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/watchlog/internal/adapter"
	"github.com/mmcdole/watchlog/internal/adapter/backend"
	"github.com/mmcdole/watchlog/internal/app"
	"github.com/mmcdole/watchlog/internal/domain"
	"github.com/mmcdole/watchlog/internal/library"
	"github.com/mmcdole/watchlog/internal/service"
	"github.com/mmcdole/watchlog/internal/store"
	"github.com/mmcdole/watchlog/internal/tui"
	"github.com/mmcdole/watchlog/internal/tui/styles"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

func main() {
	var (
		showVersion bool
		initConfig  bool
		configDir   string
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&initConfig, "init-config", false, "write the default config file and exit")
	flag.StringVar(&configDir, "config", "", "directory containing config.yaml")
	flag.Parse()

	if showVersion {
		fmt.Printf("watchlog %s\n", Version)
		return
	}

	if initConfig {
		path, err := adapter.SaveConfig(adapter.DefaultConfig())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", path)
		return
	}

	if err := run(configDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configDir string) error {
	var dirs []string
	if configDir != "" {
		dirs = append(dirs, configDir)
	}
	cfg, err := adapter.LoadConfig(dirs...)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting watchlog", "version", Version, "backend", cfg.Backend.URL)

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("watchlog needs an interactive terminal")
	}

	prefs, err := store.NewPrefsStore(cfg.Cache.Path, cfg.Backend.URL)
	if err != nil {
		// Preferences are a convenience; run without persistence
		logger.Warn("failed to open preferences store, continuing in memory", "error", err)
		prefs, _ = store.NewPrefsStore("", "")
	}
	defer prefs.Close()

	client := backend.NewClient(cfg.Backend.URL, backend.Options{
		Timeout:           cfg.Backend.Timeout,
		Retries:           cfg.Backend.Retries,
		RequestsPerSecond: cfg.Backend.RequestsPerSecond,
		Logger:            logger,
	})

	healthSvc := service.NewHealthService(client, logger)
	checkBackendWithSpinner(healthSvc, cfg.Backend.URL)

	core := app.New(app.Services{
		Library:  service.NewLibraryService(client, logger),
		Episodes: service.NewEpisodeService(client, logger),
		Friends:  service.NewFriendService(client, logger),
		Tags:     service.NewTagService(client, logger),
		Search:   service.NewSearchService(client, logger),
		Health:   healthSvc,
		Prefs:    prefs,
	}, app.Options{
		SearchDebounce:  cfg.Search.Debounce,
		NotificationTTL: cfg.UI.NotificationTTL,
		RequestTimeout:  cfg.Backend.Timeout * time.Duration(cfg.Backend.Retries+1),
		DefaultSort:     library.ParseSortKey(cfg.UI.DefaultSort),
		Logger:          logger,
	})

	model := tui.NewModel(core, logger)

	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI")

	_, err = p.Run()
	if flushErr := core.FlushPrefs(); flushErr != nil {
		logger.Error("failed to save preferences", "error", flushErr)
	}
	if err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// checkBackendWithSpinner pings the backend before the TUI takes over the
// screen. Failure is only reported; the TUI shows the offline state itself.
func checkBackendWithSpinner(svc *service.HealthService, url string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type result struct {
		health domain.Health
		err    error
	}
	resultCh := make(chan result, 1)

	go func() {
		h, err := svc.Health(ctx)
		resultCh <- result{h, err}
	}()

	frame := 0
	fmt.Printf("\r%s Connecting to %s...", styles.SpinnerFrames[frame], url)

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case res := <-resultCh:
			fmt.Print(clearSpinnerLine)
			if res.err != nil {
				fmt.Printf("✗ Backend unreachable: %v\n", domain.ErrorInfoFrom(res.err).Message)
				return
			}
			if !res.health.OK() {
				fmt.Printf("! Backend reports status %q\n", res.health.Status)
			}
			return

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Connecting to %s...", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)], url)

		case <-ctx.Done():
			fmt.Print(clearSpinnerLine)
			fmt.Println("✗ Backend did not answer in time")
			return
		}
	}
}
