package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"subpager/internal/config"
	"subpager/internal/eventbus"
	"subpager/internal/feedapi"
	"subpager/internal/listing"
	"subpager/internal/live"
	"subpager/internal/logging"
	"subpager/internal/store/sqlite"
	"subpager/internal/ui"
	"subpager/internal/ui/viewmodels"
)

func init() {
	// Query the terminal background before Bubble Tea owns the input stream
	_ = lipgloss.HasDarkBackground()
}

func newRootCmd() *cobra.Command {
	return buildRootCmd(viper.New())
}

// buildRootCmd builds the command tree with its flags bound to v.
func buildRootCmd(v *viper.Viper) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:           "subpager",
		Short:         "Browse community feeds in the terminal",
		Long:          `subpager shows the posts of a community as an endless list, loading more as you scroll.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(v, cfgFile)
			if err != nil {
				return err
			}
			return runApp(cmd.Context(), settings)
		},
	}

	cmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/subpager/config.toml)")
	cmd.PersistentFlags().String("log-file", "", "log file path")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	flags := cmd.Flags()
	flags.String("api", "", "base URL of the feed API")
	flags.String("backend", "", "listing backend: "+backendNames())
	flags.String("db", "", "sqlite database for the db backend")
	flags.String("community", "", "community to show first (default: the last one shown)")

	_ = v.BindPFlag("api", flags.Lookup("api"))
	_ = v.BindPFlag("backend", flags.Lookup("backend"))
	_ = v.BindPFlag("db", flags.Lookup("db"))
	_ = v.BindPFlag("community", flags.Lookup("community"))
	_ = v.BindPFlag("log_file", cmd.PersistentFlags().Lookup("log-file"))
	_ = v.BindPFlag("debug", cmd.PersistentFlags().Lookup("debug"))

	cmd.AddCommand(newServeFixtureCmd(v))
	return cmd
}

// loadSettings resolves defaults, the config file, environment and flags.
func loadSettings(v *viper.Viper, cfgFile string) (config.Settings, error) {
	config.SetDefaults(v)
	if err := config.ReadFile(v, cfgFile); err != nil {
		return config.Settings{}, err
	}
	settings, err := config.Load(v)
	if err != nil {
		return config.Settings{}, err
	}
	if _, err := listing.ParseBackend(settings.Backend); err != nil {
		return config.Settings{}, err
	}
	return settings, nil
}

func backendNames() string {
	names := make([]string, 0, len(listing.Backends()))
	for _, b := range listing.Backends() {
		names = append(names, b.String())
	}
	return strings.Join(names, ", ")
}

func runApp(ctx context.Context, settings config.Settings) error {
	closeLog, err := logging.Init(settings.LogFile, settings.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not open log file: %v\n", err)
	}
	defer closeLog()
	log := logging.L(logging.CatUI)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus := eventbus.New()
	defer bus.Close()

	session := config.NewStateService(settings.StateFile, bus)
	st, err := session.Load()
	if err != nil {
		log.Warn("load session state", zap.Error(err))
		st = config.DefaultState()
	}
	community := strings.TrimSpace(settings.Community)
	if community == "" {
		community = st.Community()
	}

	feed, err := feedapi.New(settings.APIBaseURL, feedapi.Options{
		Timeout:   settings.HTTP.Timeout,
		RetryMax:  settings.HTTP.RetryMax,
		RateLimit: settings.HTTP.RateLimit,
		Burst:     settings.HTTP.Burst,
		CacheTTL:  settings.HTTP.CacheTTL,
	})
	if err != nil {
		return err
	}

	backend, err := listing.ParseBackend(settings.Backend)
	if err != nil {
		return err
	}

	deps := listing.Deps{Feed: feed}
	if backend == listing.Database {
		if err := os.MkdirAll(filepath.Dir(settings.DBPath), 0o755); err != nil {
			return fmt.Errorf("create database directory: %w", err)
		}
		store, err := sqlite.Open(ctx, settings.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()
		deps.Store = store
	}

	// the pool drains before the store closes
	queue := live.NewQueue()
	defer queue.Close()
	pool := listing.NewPool(listing.DefaultWorkers)
	defer pool.Wait()
	deps.Dispatcher = queue
	deps.Executor = pool

	provider, err := listing.NewProvider(ctx, backend, deps)
	if err != nil {
		return err
	}
	log.Info("starting",
		zap.String("api", settings.APIBaseURL),
		zap.String("backend", backend.String()),
		zap.String("community", community))

	model := ui.NewModel(ui.Options{
		Posts:     viewmodels.NewPostsViewModel(provider, bus),
		Queue:     queue,
		Bus:       bus,
		Session:   session,
		UI:        settings.UI,
		Community: community,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.SetProgram(p)

	// Forward bus events the UI reacts to
	eventChan := make(chan eventbus.DomainEvent, 100)
	forward := func(e eventbus.DomainEvent) {
		select {
		case eventChan <- e:
		default:
			log.Warn("event channel full, dropping event", zap.String("type", string(e.Type())))
		}
	}
	for _, t := range []eventbus.EventType{
		eventbus.EventError,
		eventbus.EventNetworkStateChanged,
		eventbus.EventListingCreated,
		eventbus.EventConfigSaved,
	} {
		unsubscribe := bus.Subscribe(t, forward)
		defer unsubscribe()
	}
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case e := <-eventChan:
				p.Send(ui.EventMsg{Event: e})
			case <-done:
				return
			}
		}
	}()

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		log.Error("program exited", zap.Error(err))
		return fmt.Errorf("running program: %w", err)
	}
	log.Info("exited normally")
	return nil
}
