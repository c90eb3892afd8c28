package app

import (
	"os"
	"time"

	"go.uber.org/zap"

	"killpath/internal/config"
	"killpath/internal/source"
	"killpath/internal/terminate"
)

const (
	defaultListingTimeout = 30 * time.Second
	defaultKillTimeout    = 10 * time.Second
	defaultParallelism    = 4
)

// Options configures the top-level controller.
type Options struct {
	Source         source.Source
	Terminator     terminate.Terminator
	Logger         *zap.SugaredLogger
	ListingTimeout time.Duration
	KillTimeout    time.Duration
	Parallelism    int

	// Stat checks that a target path exists. Defaults to os.Stat.
	Stat func(name string) (os.FileInfo, error)
}

// App exposes high-level operations that the CLI/TUI can reuse.
type App struct {
	source         source.Source
	terminator     terminate.Terminator
	log            *zap.SugaredLogger
	listingTimeout time.Duration
	killTimeout    time.Duration
	parallelism    int
	stat           func(name string) (os.FileInfo, error)
}

// New constructs the shared controller facade.
func New(opts Options) *App {
	a := &App{
		source:         opts.Source,
		terminator:     opts.Terminator,
		log:            opts.Logger,
		listingTimeout: opts.ListingTimeout,
		killTimeout:    opts.KillTimeout,
		parallelism:    opts.Parallelism,
		stat:           opts.Stat,
	}
	if a.source == nil {
		a.source = source.WMIC{}
	}
	if a.terminator == nil {
		a.terminator, _ = terminate.New(terminate.DefaultKind())
	}
	if a.log == nil {
		a.log = zap.NewNop().Sugar()
	}
	if a.listingTimeout <= 0 {
		a.listingTimeout = defaultListingTimeout
	}
	if a.killTimeout <= 0 {
		a.killTimeout = defaultKillTimeout
	}
	if a.parallelism <= 0 {
		a.parallelism = defaultParallelism
	}
	if a.stat == nil {
		a.stat = os.Stat
	}
	return a
}

// OptionsFromConfig resolves the source and terminator named by cfg.
func OptionsFromConfig(cfg config.Config, logger *zap.SugaredLogger) (Options, error) {
	kind := cfg.Source
	if cfg.ListingFile != "" {
		kind = source.KindFile
	}
	src, err := source.New(kind, cfg.ListingFile)
	if err != nil {
		return Options{}, err
	}
	term, err := terminate.New(cfg.Terminator)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Source:         src,
		Terminator:     term,
		Logger:         logger,
		ListingTimeout: cfg.ListingTimeout,
		KillTimeout:    cfg.KillTimeout,
		Parallelism:    cfg.Parallelism,
	}, nil
}
