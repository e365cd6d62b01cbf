package main

import (
	"fmt"

	"recruit_portal_backend/internal/adapters/storage"
	"recruit_portal_backend/internal/funnel/taxonomyfile"
	importsrepo "recruit_portal_backend/internal/imports/repository"
	importsservice "recruit_portal_backend/internal/imports/service"
	"recruit_portal_backend/internal/scheduler"
	"recruit_portal_backend/platform/db"

	"github.com/spf13/cobra"
)

func runPreview(cmd *cobra.Command, args []string) error {
	svc, err := newPreviewService()
	if err != nil {
		return err
	}

	res, err := svc.Preview(cmd.Context(), request(args[0]))
	if err != nil {
		return err
	}
	return writeResult(cmd.OutOrStdout(), res, asJSON)
}

func runLoad(cmd *cobra.Command, args []string) error {
	if dryRun {
		return runPreview(cmd, args)
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	ctx := cmd.Context()
	opts, err := serviceOptions()
	if err != nil {
		return err
	}

	pool, err := db.NewPool(ctx, cfg, "recruit-sheet-import")
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	var archive importsservice.Archive
	if cfg.IsMinIOEnabled() {
		store, err := storage.NewMinIOService(cfg)
		if err != nil {
			return fmt.Errorf("init storage: %w", err)
		}
		archive = store
	} else {
		log.Warn("MINIO_ENDPOINT not configured; source file will not be archived")
	}

	var refresh scheduler.RefreshEnqueuer
	if cfg.GetRedisURL() != "" {
		client, err := scheduler.NewClient(cfg)
		if err != nil {
			return fmt.Errorf("init scheduler client: %w", err)
		}
		defer func() { _ = client.Close() }()
		refresh = client
	} else {
		log.Warn("REDIS_URL not configured; reports refresh on cache expiry only")
	}

	svc := importsservice.New(importsrepo.New(pool), archive, refresh, nil, log, opts)
	res, err := svc.Load(ctx, request(args[0]))
	if err != nil {
		return err
	}
	return writeResult(cmd.OutOrStdout(), res, asJSON)
}

func newPreviewService() (*importsservice.Service, error) {
	opts, err := serviceOptions()
	if err != nil {
		return nil, err
	}
	return importsservice.New(nil, nil, nil, nil, log, opts), nil
}

func serviceOptions() (importsservice.Options, error) {
	taxonomy, err := taxonomyfile.Load(cfg.GetTaxonomyFile())
	if err != nil {
		return importsservice.Options{}, fmt.Errorf("load status taxonomy: %w", err)
	}
	return importsservice.Options{
		Taxonomy:      taxonomy,
		RolloverMonth: cfg.GetFiscalRolloverMonth(),
		Bucket:        cfg.GetMinioBucketSheetImports(),
	}, nil
}

func request(path string) importsservice.Request {
	return importsservice.Request{
		Path:   path,
		Month:  month,
		Sheet:  sheetName,
		DryRun: dryRun,
	}
}
