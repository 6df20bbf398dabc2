package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/b/tabdeck/pkg/app"
	"github.com/b/tabdeck/pkg/colors"
	"github.com/b/tabdeck/pkg/config"
	"github.com/b/tabdeck/pkg/control"
	"github.com/b/tabdeck/pkg/dashboard"
	"github.com/b/tabdeck/pkg/executor"
	"github.com/b/tabdeck/pkg/layout"
	"github.com/b/tabdeck/pkg/logging"
	"github.com/b/tabdeck/pkg/paths"
	"github.com/b/tabdeck/pkg/render"
	"github.com/b/tabdeck/pkg/runtime"
	"github.com/b/tabdeck/pkg/store"
	"github.com/b/tabdeck/pkg/tools"
	"github.com/b/tabdeck/pkg/validate"
	"github.com/b/tabdeck/pkg/vcs"
)

var (
	configPath = flag.String("config", "", "config file (default "+paths.ConfigPath()+")")
	startDir   = flag.String("dir", "", "directory to start project root discovery from (default: cwd)")
	debugMode  = flag.Bool("debug", false, "Enable debug logging")
)

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "usage: tabdeck [flags]\n       tabdeck init [-force]\n       tabdeck ctl [-dir DIR] <action> [args...]\n\nflags:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	var err error
	switch {
	case flag.NArg() == 0:
		err = run()
	case flag.Arg(0) == "ctl":
		err = runCtl(flag.Args()[1:], os.Stdout)
	case flag.Arg(0) == "init":
		err = runInit(flag.Args()[1:], os.Stdout)
	default:
		err = fmt.Errorf("unknown command %q", flag.Arg(0))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "tabdeck: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and locates the project root.
func loadConfig(path, start string, v *validate.Validator) (*config.Config, string, error) {
	if path == "" {
		path = paths.ConfigPath()
	}
	cfg, err := config.LoadConfig(path, v)
	if err != nil {
		return nil, "", err
	}
	if start == "" {
		if start, err = os.Getwd(); err != nil {
			return nil, "", fmt.Errorf("working directory: %w", err)
		}
	}
	root, err := paths.FindProjectRoot(start, cfg.Markers...)
	if err != nil {
		return nil, "", err
	}
	return cfg, root, nil
}

func run() (err error) {
	v := validate.New()
	cfg, root, err := loadConfig(*configPath, *startDir, v)
	if err != nil {
		return err
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("stdout is not a terminal")
	}

	level := cfg.Log.Level
	if *debugMode {
		level = "debug"
	}
	log, err := logging.New(logging.Config{
		Level:       level,
		Development: cfg.Log.Development,
		OutputPaths: []string{cfg.Log.Path},
	})
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer log.Sync()
	defer logging.RecoverInto(log, "main", &err)

	actx, err := runtime.NewContext(cfg, root, v, log)
	if err != nil {
		return err
	}
	docs := store.New(actx.StatePath, log.Named("store"))
	doc, err := docs.Load()
	if err != nil {
		return err
	}

	opts := dashboard.Options{HeaderHeight: cfg.HeaderHeight}
	initial := app.NewState(cfg, root)
	if err := layout.Validate(dashboard.Build(initial, opts)); err != nil {
		return fmt.Errorf("dashboard layout: %w", err)
	}
	initial, _ = app.Process(initial, app.DocumentLoaded{Doc: doc})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := tools.Runner{}
	exec := executor.New(ctx, executor.Options{
		Tools:     runner,
		VCS:       vcs.NewCache(runner, cfg.VCSTTL),
		Store:     docs,
		Clipboard: actx.Clipboard,
		Logger:    log.Named("executor"),
	})
	theme := colors.Get(cfg.Theme)
	renderer := render.New(render.Options{
		Theme:   theme,
		Profile: colors.Profile(cfg.ColorProfile),
		Keys:    app.NewKeyMap(cfg.Bindings),
		Masker:  actx.Masker,
		Output:  os.Stdout,
	})
	pub := &runtime.Publisher{}
	model := runtime.New(runtime.Options{
		Context:   actx,
		Executor:  exec,
		Renderer:  renderer,
		State:     initial,
		Publisher: pub,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	send := func(a app.Action) { p.Send(a) }

	if err := docs.Watch(ctx, func(d store.Document) { send(app.DocumentLoaded{Doc: d}) }); err != nil {
		log.Warn("state file not watched", zap.Error(err))
	}
	server := control.NewServer(actx.SocketPath, control.Options{
		Send:      send,
		Snapshot:  pub.Load,
		Validator: v,
		Logger:    log,
	})
	if err := server.Start(); err != nil {
		log.Warn("control socket disabled", zap.Error(err))
	} else {
		defer server.Stop()
	}

	log.Info("starting",
		zap.String("root", root),
		zap.String("theme", theme.Name),
		zap.String("socket", actx.SocketPath),
		zap.String("state", actx.StatePath),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal: %w", err)
	}

	stats := exec.Stats()
	for _, name := range stats.Names() {
		s, _ := stats.Get(name)
		log.Info("effect timings", zap.String("effect", name), zap.Int("count", s.Count),
			zap.Duration("mean", s.Mean()), zap.Duration("max", s.Max))
	}
	return nil
}
