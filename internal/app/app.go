package app

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/vocfr-backend/internal/adapter/postgres"
	"github.com/heartmarshall/vocfr-backend/internal/adapter/postgres/content"
	"github.com/heartmarshall/vocfr-backend/internal/adapter/sqlite"
	"github.com/heartmarshall/vocfr-backend/internal/app/importer"
	"github.com/heartmarshall/vocfr-backend/internal/audio"
	"github.com/heartmarshall/vocfr-backend/internal/config"
	"github.com/heartmarshall/vocfr-backend/internal/domain"
)

// postgresStore joins the context-carried transaction manager and the
// content repository into an importer.Store.
type postgresStore struct {
	*postgres.TxManager
	*content.Repo
}

// OpenStore connects to the configured backend, brings its schema up to date
// and returns the store with a function that releases it.
func OpenStore(ctx context.Context, log *slog.Logger, cfg *config.Config) (importer.Store, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := postgres.MigratePool(ctx, log, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		log.Info("store opened", slog.String("driver", cfg.Store.Driver))
		return postgresStore{TxManager: postgres.NewTxManager(pool), Repo: content.New(pool)}, pool.Close, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, log, cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info("store opened",
			slog.String("driver", cfg.Store.Driver),
			slog.String("path", cfg.Store.SQLitePath),
		)
		return sqlite.NewStore(db), func() { _ = db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("open store: %w", domain.NewValidationError("store.driver", "unsupported: "+cfg.Store.Driver))
	}
}

// NewAudioResolver builds the resolver over the asset directory, memoized
// unless cfg.MemoSize is zero.
func NewAudioResolver(log *slog.Logger, assets fs.FS, cfg config.AssetsConfig) (audio.WordResolver, error) {
	r := audio.NewResolver(log, audio.NewFSAssetStore(assets, cfg.AudioExtensions))
	if cfg.MemoSize == 0 {
		return r, nil
	}
	cached, err := audio.NewCachingResolver(r, cfg.MemoSize)
	if err != nil {
		return nil, fmt.Errorf("audio resolver: %w", err)
	}
	return cached, nil
}

// ContentReport is the stored content summarized against the asset tree.
type ContentReport struct {
	Graph  *domain.Graph
	Report importer.Report
	Issues []importer.Issue
}

// BuildContentReport loads the stored graph and the audio inventory in
// parallel, then summarizes them. Issues are collected only when validate is set.
func BuildContentReport(
	ctx context.Context,
	store importer.Store,
	assets fs.FS,
	cfg config.AssetsConfig,
	validate bool,
) (*ContentReport, error) {
	var (
		graph     *domain.Graph
		inventory []string
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		graph, err = store.LoadGraph(gctx)
		if err != nil {
			return fmt.Errorf("load graph: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		inventory, err = audio.Inventory(assets, cfg.AudioExtensions)
		if err != nil {
			return fmt.Errorf("audio inventory: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &ContentReport{Graph: graph, Report: importer.BuildReport(graph, inventory)}
	if validate {
		var images audio.AssetStore
		if len(cfg.ImageExtensions) > 0 {
			images = audio.NewFSAssetStore(assets, cfg.ImageExtensions)
		}
		out.Issues = importer.Validate(graph, images)
	}
	return out, nil
}
