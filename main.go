package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/fragmede/livethread/internal/api"
	"github.com/fragmede/livethread/internal/cache"
	"github.com/fragmede/livethread/internal/config"
	"github.com/fragmede/livethread/internal/ui"
)

var (
	version = "dev"
	commit  = "none"
)

type cliMode int

const (
	cliRun cliMode = iota
	cliVersion
	cliHelp
	cliInvalid
)

// parseCLIArgs returns the mode and, for cliRun, the thread URL to open
// (possibly empty); for cliInvalid the second value is the complaint.
func parseCLIArgs(args []string) (cliMode, string) {
	if len(args) == 0 {
		return cliRun, ""
	}

	switch args[0] {
	case "--version", "-version", "-v":
		return cliVersion, ""
	case "--help", "-h", "help":
		return cliHelp, ""
	}
	if strings.HasPrefix(args[0], "-") {
		return cliInvalid, "unexpected argument: " + args[0]
	}
	if len(args) > 1 {
		return cliInvalid, "unexpected argument: " + strings.Join(args[1:], " ")
	}
	return cliRun, args[0]
}

func usage() string {
	return "Usage: livethread [--version|-v] [--help|-h] [THREAD_URL]"
}

func resolveVersion(v, c string) (string, string) {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return v, c
	}
	if v == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		v = info.Main.Version
	}
	if c == "none" {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				c = s.Value
				if len(c) > 12 {
					c = c[:12]
				}
			}
		}
	}
	return v, c
}

// setupLogger logs to cfg.LogPath in debug mode and nowhere otherwise;
// the terminal belongs to the UI.
func setupLogger(cfg config.Config) (*slog.Logger, func() error, error) {
	if !cfg.Debug {
		log := slog.New(slog.NewTextHandler(io.Discard, nil))
		return log, func() error { return nil }, nil
	}

	f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log: %w", err)
	}
	log := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return log, f.Close, nil
}

func main() {
	mode, arg := parseCLIArgs(os.Args[1:])
	switch mode {
	case cliVersion:
		v, c := resolveVersion(version, commit)
		fmt.Printf("livethread %s\ncommit: %s\n", v, c)
		return
	case cliHelp:
		fmt.Println(usage())
		return
	case cliInvalid:
		fmt.Fprintf(os.Stderr, "%s\n%s\n", arg, usage())
		os.Exit(2)
	}

	if err := run(arg); err != nil {
		fmt.Fprintf(os.Stderr, "livethread: %v\n", err)
		os.Exit(1)
	}
}

func run(initialURL string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	log, closeLog, err := setupLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(log)

	menu, err := config.LoadMenu(cfg.MenuPath)
	if err != nil {
		return err
	}

	db, err := cache.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer db.Close()

	client := api.NewClient(api.Options{
		BaseURL:    cfg.BaseURL,
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.RequestTimeout,
		FetchLimit: cfg.FetchLimit,
	})
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	app := ui.NewApp(ctx, cfg, client, db, menu, log)
	if initialURL != "" {
		app.OpenURL(initialURL)
	}
	p := tea.NewProgram(app, tea.WithAltScreen())
	app.SetProgram(p)

	g.Go(func() error {
		prefetch(ctx, client, db, menu, cfg, log)
		return nil
	})
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		return err
	})

	err = g.Wait()
	app.Shutdown()
	log.Info("exiting", "error", err)
	return err
}

// prefetch warms the thread cache for every search in the menu.
func prefetch(ctx context.Context, client *api.Client, db *cache.DB, menu config.Menu, cfg config.Config, log *slog.Logger) {
	for _, item := range menu.Items {
		if !item.IsSearch() {
			continue
		}
		q := item.Query()
		if _, fresh, _ := db.GetThreadList(ctx, q.Key(), cfg.ThreadListTTL); fresh {
			continue
		}
		threads, err := client.FindThreads(ctx, q)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Debug("prefetch failed", "category", item.Title, "error", err)
			continue
		}
		if len(threads) == 0 {
			continue
		}
		if err := db.PutThreadList(ctx, q.Key(), threads); err != nil {
			log.Debug("prefetch not cached", "category", item.Title, "error", err)
		}
	}
}
