package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"taskdeck/internal/backend/taskapi"
	"taskdeck/internal/commands"
	"taskdeck/internal/config"
	"taskdeck/internal/kv"
	"taskdeck/internal/logging"
	"taskdeck/internal/push"
	"taskdeck/internal/session"
	"taskdeck/internal/task"
)

// DefaultFactory wires the production App: SQLite storage in the config
// directory, the HTTP API client and the local push runtime.
func DefaultFactory(ctx context.Context, cfg *config.Config, in *bufio.Reader, errOut io.Writer) (*commands.App, func() error, error) {
	if err := cfg.EnsureDir(); err != nil {
		return nil, nil, fmt.Errorf("create config directory: %w", err)
	}

	log, closeLog, err := logging.New(logging.Options{
		Debug:  cfg.Debug,
		Stderr: errOut,
		Path:   cfg.LogPath(),
		Level:  cfg.LogLevel,
	})
	if err != nil {
		return nil, nil, err
	}

	store, err := kv.Open(cfg.DatabasePath())
	if err != nil {
		_ = closeLog()
		return nil, nil, err
	}

	client := taskapi.New(cfg, session.TokenSource(store))
	rt := push.NewLocalRuntime(store, cfg.PushEndpoint, commands.StdinPrompter(in, errOut))
	pm := push.NewManager(rt, client, cfg.VAPIDPublicKey, log)

	app := &commands.App{
		Config:  cfg,
		Service: client,
		Session: session.New(client, store, pm, log),
		Tasks:   task.NewStore(store, log),
		Push:    pm,
		In:      in,
		Log:     log,
		Now:     time.Now,
	}
	log.Debug("app ready", "dir", cfg.Dir, "api", cfg.APIURL)

	closeAll := func() error {
		err := store.Close()
		if cerr := closeLog(); err == nil {
			err = cerr
		}
		return err
	}
	return app, closeAll, nil
}
