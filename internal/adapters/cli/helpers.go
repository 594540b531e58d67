package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/andrescamacho/craftplan-go/internal/adapters/logging"
	"github.com/andrescamacho/craftplan-go/internal/application/common"
	"github.com/andrescamacho/craftplan-go/internal/infrastructure/bootstrap"
	"github.com/andrescamacho/craftplan-go/internal/infrastructure/config"
)

// session is a local planner stack opened for one command
type session struct {
	ctx    context.Context
	app    *bootstrap.App
	closer io.Closer
}

func (s *session) Close() {
	s.app.Close()
	s.closer.Close()
}

// openSession loads the configuration and builds the local planner stack.
// The returned context carries the logger.
func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logCfg := cfg.Logging
	if verbose {
		logCfg.Level = "debug"
	}
	logger, closer, err := logging.NewFromConfig(logCfg)
	if err != nil {
		return nil, err
	}

	ctx = common.WithLogger(ctx, logger)
	app, err := bootstrap.NewApp(ctx, cfg, logger)
	if err != nil {
		closer.Close()
		return nil, err
	}
	return &session{ctx: ctx, app: app, closer: closer}, nil
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
