package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"

	"github.com/NeoKiring/project-management-system/internal/config"
	"github.com/NeoKiring/project-management-system/internal/core"
	"github.com/NeoKiring/project-management-system/internal/logging"
	"github.com/NeoKiring/project-management-system/internal/model"
	"github.com/NeoKiring/project-management-system/internal/storage"
)

// app bundles everything a command needs and owns the open files.
type app struct {
	cfg     *config.Config
	manager *core.Manager
	log     zerolog.Logger
	closers []io.Closer
}

func (a *app) Close() {
	for _, c := range a.closers {
		c.Close()
	}
}

// mustApp boots config, logging, audit, store and manager.
func mustApp() (*app, error) {
	path := configPath
	if path == "" {
		path = filepath.Join(config.DefaultBaseDir(), config.FileName)
	}
	cfg, err := config.LoadOrInit(path)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg}
	log, closer, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}
	a.log = log
	if closer != nil {
		a.closers = append(a.closers, closer)
	}
	var audit *logging.AuditTrail
	if cfg.AuditFile != "" {
		audit, err = logging.NewAuditTrail(cfg.AuditFile, cfg.User)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open audit trail: %w", err)
		}
		a.closers = append(a.closers, audit)
	}
	store, err := storage.New(cfg.DataDir)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.manager, err = core.New(store, log, audit, cfg.User)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// newTable returns a writer rendering to stdout with the shared style.
func newTable() table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleLight)
	return tw
}

// shortID abbreviates a uuid for table display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func dateOrDash(d *model.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

func progressCell(progress float64) string {
	return fmt.Sprintf("%.1f%%", progress)
}
