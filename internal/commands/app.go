package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/casterly-dev/casterly/internal/categorize"
	"github.com/casterly-dev/casterly/internal/config"
	"github.com/casterly-dev/casterly/internal/importer"
	"github.com/casterly-dev/casterly/internal/ledger"
	"github.com/casterly-dev/casterly/internal/logger"
	"github.com/casterly-dev/casterly/internal/model"
	"github.com/casterly-dev/casterly/internal/report"
	"github.com/casterly-dev/casterly/internal/store"
)

// environment holds the global flags shared by every command.
type environment struct {
	v *viper.Viper
}

// app is an opened project: config, database and services.
type app struct {
	ctx  context.Context
	root string
	cfg  *config.Config
	db   *store.DB

	ledger     *ledger.Ledger
	importer   *importer.Importer
	categorize *categorize.Service
	report     *report.Service
}

func (e *environment) projectDir() (string, error) {
	dir, err := filepath.Abs(e.v.GetString("dir"))
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return dir, nil
}

func (e *environment) configPath(dir string) string {
	if p := e.v.GetString("config"); p != "" {
		return p
	}
	return filepath.Join(dir, config.FileName)
}

func (e *environment) loadEnv() error {
	return config.LoadEnv(e.v.GetString("env-file"))
}

func (e *environment) logger(cmd *cobra.Command, cfg *config.Config) (zerolog.Logger, error) {
	level := e.v.GetString("log-level")
	if level == "" {
		level = cfg.Log.Level
	}
	return logger.New(cmd.ErrOrStderr(), level, logger.Format(cfg.Log.Format))
}

// open loads the project config and opens its database. Without a config
// file the defaults are used, as long as --db names a database.
func (e *environment) open(cmd *cobra.Command) (*app, error) {
	if err := e.loadEnv(); err != nil {
		return nil, err
	}
	dir, err := e.projectDir()
	if err != nil {
		return nil, err
	}

	cfgPath := e.configPath(dir)
	cfg, err := config.Load(cfgPath)
	switch {
	case err == nil:
		dir = filepath.Dir(cfgPath)
	case errors.Is(err, fs.ErrNotExist) && e.v.GetString("db") != "":
		cfg = config.Default("")
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("no %s in %s, run casterly init first", config.FileName, dir)
	default:
		return nil, err
	}

	log, err := e.logger(cmd, cfg)
	if err != nil {
		return nil, err
	}
	ctx := logger.WithContext(cmd.Context(), log)

	dbPath := e.v.GetString("db")
	if dbPath == "" {
		dbPath = cfg.DatabasePath(dir)
	}
	db, err := store.Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("db", dbPath).Msg("database opened")

	l := ledger.New(db)
	return &app{
		ctx:        ctx,
		root:       dir,
		cfg:        cfg,
		db:         db,
		ledger:     l,
		importer:   importer.New(l, db.Queries()),
		categorize: categorize.NewService(l, db.Queries()),
		report:     report.NewService(db.Queries()),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

func (a *app) queries() store.Queries {
	return a.db.Queries()
}

// categoryNames maps category IDs to names for listings.
func (a *app) categoryNames() (map[int64]string, error) {
	cats, err := a.queries().ListCategories(a.ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return names, nil
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, s)
	}
	return id, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(model.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return d, nil
}

func parseInt(s, what string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return n, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
