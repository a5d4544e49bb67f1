package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"toggl-mcp/internal/adapter/filestore"
	msql "toggl-mcp/internal/adapter/mysql"
	tg "toggl-mcp/internal/adapter/toggl"
	"toggl-mcp/internal/config"
	"toggl-mcp/internal/migrate"
	"toggl-mcp/internal/ports"
	"toggl-mcp/internal/resolve"
	"toggl-mcp/internal/timeconv"
	"toggl-mcp/internal/tools"
	"toggl-mcp/internal/usecase"
)

const instructions = `Toggl Track time tracking tools.
All timestamps you send (start, stop, start_date, end_date, start_time, end_time) are local wall-clock
times in the server's timezone, e.g. 2025-06-10T09:00:00; they are converted to UTC before reaching Toggl.
Results carry both UTC fields and *_local renderings. Call get_timezone_info when unsure which timezone applies.
Entries, projects and workspaces are addressed by name; omit workspace_name to use the default workspace.`

// App wires adapters, use cases and the MCP server.
type App struct {
	log    *slog.Logger
	mcp    *server.MCPServer
	stream *server.StreamableHTTPServer
	store  ports.PresetStore
}

func New(log *slog.Logger, cfg config.Config) (*App, error) {
	togglClient := tg.NewClient(cfg.Toggl.BaseURL, tg.Credentials{
		APIToken: cfg.Toggl.APIToken,
		Email:    cfg.Toggl.Email,
		Password: cfg.Toggl.Password,
	}, log)

	loc := cfg.Location
	if loc == nil {
		var err error
		if loc, err = timeconv.LoadLocation(cfg.Timezone); err != nil {
			return nil, err
		}
	}

	store, err := openStore(context.Background(), log, cfg)
	if err != nil {
		return nil, err
	}
	conv := timeconv.New(loc)
	resolver := &resolve.Resolver{Toggl: togglClient, DefaultWorkspaceID: cfg.Toggl.WorkspaceID}
	query := &usecase.QueryEngine{Log: log, Toggl: togglClient}

	entries := &usecase.TimeEntryService{Log: log, Toggl: togglClient, Resolver: resolver, Query: query, Conv: conv}
	workContext := &usecase.WorkContextUseCase{Log: log, Toggl: togglClient, Query: query, Resolver: resolver, Conv: conv}
	batch := &usecase.BatchMutator{Log: log, Toggl: togglClient, Conv: conv}
	projects := &usecase.ProjectService{Log: log, Toggl: togglClient, Resolver: resolver}
	automation := &usecase.AutomationService{Log: log, Toggl: togglClient, Store: store, Resolver: resolver, Conv: conv}

	s := server.NewMCPServer(
		cfg.MCP.Name,
		cfg.MCP.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions(instructions),
		server.WithRecovery(),
	)

	handlers := []struct {
		name string
		h    tools.ToolRegisterer
	}{
		{"entry", tools.NewEntryHandler(log, entries, workContext, conv)},
		{"search", tools.NewSearchHandler(log, query, conv)},
		{"batch", tools.NewBatchHandler(log, batch, resolver, conv)},
		{"project", tools.NewProjectHandler(log, projects)},
		{"automation", tools.NewAutomationHandler(log, automation)},
	}
	for _, h := range handlers {
		if err := h.h.RegisterTools(s); err != nil {
			closeStore(store)
			return nil, fmt.Errorf("register %s tools: %w", h.name, err)
		}
	}
	if err := tools.NewResourceHandler(log, togglClient, resolver, conv).RegisterResources(s); err != nil {
		closeStore(store)
		return nil, fmt.Errorf("register resources: %w", err)
	}

	log.Info("mcp server configured",
		slog.String("name", cfg.MCP.Name),
		slog.String("version", cfg.MCP.Version),
		slog.String("timezone", loc.String()),
		slog.Bool("mysql_store", cfg.MySQL.DSN != ""),
	)
	return &App{log: log, mcp: s, store: store}, nil
}

// openStore picks MySQL when a DSN is configured, running migrations first,
// and the JSON file store otherwise.
func openStore(ctx context.Context, log *slog.Logger, cfg config.Config) (ports.PresetStore, error) {
	if cfg.MySQL.DSN == "" {
		return filestore.New(cfg.PresetDir, log)
	}
	if err := migrate.Run(ctx, cfg.MySQL.DSN, log); err != nil {
		return nil, err
	}
	return msql.NewStore(ctx, cfg.MySQL.DSN, log)
}

func closeStore(store ports.PresetStore) {
	if c, ok := store.(io.Closer); ok {
		_ = c.Close()
	}
}

// MCPServer exposes the configured server, mainly for in-process clients.
func (a *App) MCPServer() *server.MCPServer { return a.mcp }

// ServeStdio serves MCP over in and out until ctx is done or in closes.
func (a *App) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(a.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(a.log.Handler(), slog.LevelError))
	a.log.Info("serving mcp over stdio")
	err := stdio.Listen(ctx, in, out)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close shuts the streamable transport, if started, and releases the store.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.stream != nil {
		errs = append(errs, a.stream.Shutdown(ctx))
	}
	if c, ok := a.store.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
