package main

import (
	"context"
	"errors"
	"io/fs"

	"github.com/l1jgo/navgrid/internal/config"
	"github.com/l1jgo/navgrid/internal/data"
	"github.com/l1jgo/navgrid/internal/obstacle"
	"github.com/l1jgo/navgrid/internal/persist"
	"github.com/l1jgo/navgrid/internal/scripting"
	"go.uber.org/zap"
)

type obstacleSource struct {
	stamps []obstacle.Stamp
	origin string
}

// loadObstacles picks the boot layout: the database copy of layout_name,
// then the YAML table, then the Lua generator. A layout found outside the
// database is saved back to it.
func loadObstacles(ctx context.Context, cfg *config.Config, engine *scripting.Engine, repo *persist.LayoutRepo, log *zap.Logger) (obstacleSource, error) {
	name := cfg.Data.LayoutName

	if repo != nil && name != "" {
		stamps, err := repo.Load(ctx, name)
		switch {
		case err == nil:
			return obstacleSource{stamps: stamps, origin: "db:" + name}, nil
		case !errors.Is(err, persist.ErrLayoutNotFound):
			return obstacleSource{}, err
		}
	}

	src, err := loadLocal(cfg, engine, log)
	if err != nil {
		return obstacleSource{}, err
	}

	if repo != nil && name != "" && src.stamps != nil {
		wrote, err := repo.Save(ctx, name, cfg.Grid.Rows, cfg.Grid.Cols, src.stamps)
		if err != nil {
			log.Warn("layout not saved", zap.String("layout", name), zap.Error(err))
		} else if wrote {
			log.Info("layout saved", zap.String("layout", name), zap.Int("stamps", len(src.stamps)))
		}
	}
	return src, nil
}

func loadLocal(cfg *config.Config, engine *scripting.Engine, log *zap.Logger) (obstacleSource, error) {
	name := cfg.Data.LayoutName

	table, err := data.LoadLayoutTable(cfg.Data.LayoutPath)
	switch {
	case err == nil:
		if stamps, ok := table.Get(name); ok {
			return obstacleSource{stamps: stamps, origin: "yaml:" + name}, nil
		}
		log.Debug("layout not in table", zap.String("layout", name), zap.Strings("known", table.Names()))
	case errors.Is(err, fs.ErrNotExist):
		log.Debug("no layout table", zap.String("path", cfg.Data.LayoutPath))
	default:
		return obstacleSource{}, err
	}

	stamps, err := engine.Layout(cfg.Grid.Rows, cfg.Grid.Cols)
	switch {
	case err == nil:
		return obstacleSource{stamps: stamps, origin: "lua"}, nil
	case errors.Is(err, scripting.ErrNoLayoutFunc):
		log.Warn("no obstacle layout found; starting with an open grid", zap.String("layout", name))
		return obstacleSource{origin: "none"}, nil
	default:
		return obstacleSource{}, err
	}
}
