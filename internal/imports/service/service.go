package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"recruit_portal_backend/internal/adapters/storage"
	"recruit_portal_backend/internal/funnel"
	"recruit_portal_backend/internal/imports/repository"
	"recruit_portal_backend/internal/imports/sheet"
	"recruit_portal_backend/internal/scheduler"
	"recruit_portal_backend/platform/apperr"
	"recruit_portal_backend/platform/logger"
	"recruit_portal_backend/platform/metrics"
)

// Archive stores the source file of an import.
type Archive interface {
	EnsureBucketExists(ctx context.Context, bucket string) error
	UploadFile(ctx context.Context, bucket, folder, fileName, contentType string, reader io.Reader, size int64) (string, error)
	ValidateFileSize(sizeBytes int64) error
}

// Options tune how previews are computed.
type Options struct {
	Taxonomy      *funnel.Taxonomy
	RolloverMonth time.Month
	Bucket        string
}

// Request describes one import.
type Request struct {
	Path   string
	Month  string
	Sheet  string
	DryRun bool
}

// Result summarizes an import or a preview.
type Result struct {
	Month      string        `json:"month"`
	Source     string        `json:"source"`
	Rows       int           `json:"rows"`
	OtherMonth int           `json:"otherMonth"`
	Blank      int           `json:"blank"`
	Stored     int64         `json:"stored"`
	ArchiveKey string        `json:"archiveKey,omitempty"`
	Queued     bool          `json:"queued"`
	DryRun     bool          `json:"dryRun"`
	Funnel     funnel.Result `json:"funnel"`
}

// Service loads merge sheets into staging.
type Service struct {
	repo    repository.Repository
	archive Archive
	refresh scheduler.RefreshEnqueuer
	metrics *metrics.Registry
	log     *logger.Logger
	opts    Options
}

// New creates an import service. archive, refresh and reg may be nil.
func New(repo repository.Repository, archive Archive, refresh scheduler.RefreshEnqueuer, reg *metrics.Registry, log *logger.Logger, opts Options) *Service {
	if opts.Taxonomy == nil {
		opts.Taxonomy = funnel.DefaultTaxonomy()
	}
	if opts.RolloverMonth == 0 {
		opts.RolloverMonth = time.March
	}
	return &Service{
		repo:    repo,
		archive: archive,
		refresh: refresh,
		metrics: reg,
		log:     log,
		opts:    opts,
	}
}

// Preview reads the sheet and computes its funnel without writing anything.
func (s *Service) Preview(ctx context.Context, req Request) (Result, error) {
	src, err := s.read(req)
	if err != nil {
		return Result{}, err
	}
	src.result.DryRun = true
	s.log.WithContext(ctx).SheetImported(src.result.Month, src.result.Source, src.result.Rows, true)
	return src.result, nil
}

// Load replaces the month in staging with the sheet's rows, archives the
// file and queues a report refresh. With DryRun it behaves like Preview.
func (s *Service) Load(ctx context.Context, req Request) (Result, error) {
	if req.DryRun {
		return s.Preview(ctx, req)
	}

	src, err := s.read(req)
	if err != nil {
		return Result{}, err
	}
	res := src.result
	log := s.log.WithContext(ctx)

	if res.Rows == 0 {
		return Result{}, apperr.Validation(fmt.Sprintf("no rows for month %s in %s", res.Month, res.Source))
	}

	if s.archive != nil {
		key, err := s.archiveSource(ctx, res, src.data)
		if err != nil {
			return Result{}, err
		}
		res.ArchiveKey = key
	}

	stored, err := s.repo.ReplaceMonth(ctx, res.Month, src.rows)
	if err != nil {
		log.DatabaseError("imports.ReplaceMonth", err)
		return Result{}, apperr.Unavailable("staging write failed", err).WithOp("imports.Load")
	}
	res.Stored = stored
	s.metrics.ImportedRows(res.Month, int(stored))
	log.SheetImported(res.Month, res.Source, int(stored), false)

	if s.refresh != nil {
		err := s.refresh.EnqueueFunnelRefresh(ctx, scheduler.FunnelRefreshPayload{
			MonthKey: res.Month,
			Source:   res.Source,
			Rows:     int(stored),
		})
		if err != nil {
			// Staging is already replaced; reports catch up on the next refresh.
			log.Warn("funnel refresh not queued", "month", res.Month, "error", err)
		} else {
			res.Queued = true
		}
	}
	return res, nil
}

// source is a parsed sheet file.
type source struct {
	result Result
	rows   []sheet.Row
	data   []byte
}

func (s *Service) read(req Request) (source, error) {
	month, err := funnel.ParseMonthKey(strings.TrimSpace(req.Month))
	if err != nil {
		return source{}, apperr.BadRequest(err.Error())
	}

	parsed, data, err := sheet.ReadFile(req.Path, sheet.Options{Sheet: req.Sheet, Month: month.MonthKey()})
	if err != nil {
		return source{}, apperr.BadRequest(err.Error())
	}

	n := funnel.NewNormalizer(s.opts.Taxonomy, funnel.FiscalYearOf(month.Start, s.opts.RolloverMonth))
	return source{
		result: Result{
			Month:      month.MonthKey(),
			Source:     filepath.Base(req.Path),
			Rows:       len(parsed.Rows),
			OtherMonth: parsed.OtherMonth,
			Blank:      parsed.Blank,
			Funnel:     funnel.Compute(sheet.RawRows(parsed.Rows), n, month),
		},
		rows: parsed.Rows,
		data: data,
	}, nil
}

func (s *Service) archiveSource(ctx context.Context, res Result, data []byte) (string, error) {
	size := int64(len(data))
	if err := s.archive.ValidateFileSize(size); err != nil {
		return "", apperr.Validation(err.Error())
	}
	if err := s.archive.EnsureBucketExists(ctx, s.opts.Bucket); err != nil {
		return "", apperr.Unavailable("archive storage unavailable", err).WithOp("imports.Load")
	}

	key, err := s.archive.UploadFile(ctx, s.opts.Bucket, "imports/"+res.Month, res.Source,
		storage.ContentTypeFor(res.Source), bytes.NewReader(data), size)
	if err != nil {
		return "", apperr.Unavailable("archive upload failed", err).WithOp("imports.Load")
	}
	return key, nil
}
