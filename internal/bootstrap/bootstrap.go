package bootstrap

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	notifyinadapter "focusdo/internal/modules/notify/adapter/in"
	notifyoutadapter "focusdo/internal/modules/notify/adapter/out"
	notifyservice "focusdo/internal/modules/notify/service"
	notifyusecase "focusdo/internal/modules/notify/usecase"
	reviewinadapter "focusdo/internal/modules/review/adapter/in"
	reviewoutadapter "focusdo/internal/modules/review/adapter/out"
	reviewservice "focusdo/internal/modules/review/service"
	reviewusecase "focusdo/internal/modules/review/usecase"
	sessioninadapter "focusdo/internal/modules/session/adapter/in"
	sessionoutadapter "focusdo/internal/modules/session/adapter/out"
	sessionservice "focusdo/internal/modules/session/service"
	sessionusecase "focusdo/internal/modules/session/usecase"
	"focusdo/internal/platform/clock"
	"focusdo/internal/platform/config"
	"focusdo/internal/platform/id"
	uiapp "focusdo/internal/ui/app"
)

// App wires every module once and hands thin handlers to the CLI and TUI.
// Construction is explicit: no package-level state, no init magic.
type App struct {
	SessionCLI sessioninadapter.CLIHandler
	ReviewCLI  reviewinadapter.CLIHandler
	NotifyCLI  notifyinadapter.CLIHandler

	connectivity *sessionoutadapter.ProbeConnectivity
	syncEngine   *sessionservice.SyncEngine
	offlineStore *sessionoutadapter.SQLiteOfflineStore
	cfg          config.Config
}

func New(cfg config.Config) (*App, error) {
	clk := clock.SystemClock{}
	ids := id.UUID{}

	offlineStore, err := sessionoutadapter.NewSQLiteOfflineStore(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("open offline store: %w", err)
	}
	remoteStore := sessionoutadapter.NewHTTPRemoteStore(cfg.RemoteURL, cfg.APIKey)
	connectivity := sessionoutadapter.NewProbeConnectivity(cfg.ProbeURL, cfg.SyncInterval())

	gateway := sessionservice.NewGateway(clk, ids, remoteStore, offlineStore, connectivity, cfg.UserID)
	syncEngine := sessionservice.NewSyncEngine(remoteStore, offlineStore, connectivity)
	sessionUC := sessionusecase.NewInteractor(clk, gateway, syncEngine)

	reviewUC := reviewusecase.NewInteractor(reviewservice.NewReviewService(
		clk,
		reviewoutadapter.NewSessionModuleDirectory(sessionUC),
	))

	notifyUC := notifyusecase.NewInteractor(notifyservice.NewNotifyService(
		notifyoutadapter.NewFileManifestStore(cfg.PluginDir),
		notifyoutadapter.NewGRPCHost(),
	))

	return &App{
		SessionCLI:   sessioninadapter.NewCLIHandler(sessionUC),
		ReviewCLI:    reviewinadapter.NewCLIHandler(reviewUC),
		NotifyCLI:    notifyinadapter.NewCLIHandler(notifyUC),
		connectivity: connectivity,
		syncEngine:   syncEngine,
		offlineStore: offlineStore,
		cfg:          cfg,
	}, nil
}

// StartBackground launches the connectivity watcher and the sync loop.
// Long-lived callers (the TUI) use this; one-shot CLI commands don't.
func (a *App) StartBackground(ctx context.Context) {
	go a.connectivity.Run(ctx)
	go a.syncEngine.Run(ctx, a.cfg.SyncInterval())
}

func (a *App) Close() error {
	return a.offlineStore.Close()
}

func RunTUI(ctx context.Context, app *App) error {
	app.StartBackground(ctx)
	model := uiapp.NewModel(app.SessionCLI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
