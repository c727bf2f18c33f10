// Package report provides the use case for turning a fetched digest into a
// downloadable PDF document, optionally enriching articles with extracted
// body text first.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"district-digest/internal/domain/entity"
	"district-digest/internal/infra/enrich"
	"district-digest/internal/observability/tracing"
)

// ErrNoArticles indicates a generate request with an empty article list.
var ErrNoArticles = errors.New("no articles to generate PDF from")

// enrichTimeout bounds the whole enrichment phase of one render.
// PDF generation runs inside the client's 15 second budget, so enrichment
// gets a slice of it, not all of it.
const enrichTimeout = 8 * time.Second

// Renderer turns a PDF request into document bytes.
type Renderer interface {
	Render(req *entity.PdfRequest) ([]byte, error)
}

// Service generates digest PDFs.
type Service struct {
	renderer Renderer
	fetcher  enrich.ContentFetcher
	config   enrich.Config
	logger   *slog.Logger
}

// NewService creates a report Service. fetcher may be nil; articles are then
// rendered with provider metadata only.
func NewService(renderer Renderer, fetcher enrich.ContentFetcher, config enrich.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		renderer: renderer,
		fetcher:  fetcher,
		config:   config,
		logger:   logger,
	}
}

// Generate validates the request, optionally enriches article bodies, and
// renders the PDF.
func (s *Service) Generate(ctx context.Context, req *entity.PdfRequest) ([]byte, error) {
	if req == nil || len(req.Articles) == 0 {
		return nil, ErrNoArticles
	}
	if err := entity.ValidateDistrict(req.District); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "report.generate")
	defer span.End()

	// Work on a copy; the caller's slice is also the rendered table.
	articles := make([]entity.Article, len(req.Articles))
	copy(articles, req.Articles)

	if s.config.Enabled && s.fetcher != nil {
		s.enrichAll(ctx, articles)
	}

	out, err := s.renderer.Render(&entity.PdfRequest{
		Articles: articles,
		District: req.District,
		Date:     req.Date,
	})
	if err != nil {
		return nil, fmt.Errorf("render digest pdf: %w", err)
	}
	return out, nil
}

// enrichAll fills empty article descriptions with extracted page text,
// concurrently under a bounded errgroup. Failures leave the description
// empty; enrichment never fails a render.
func (s *Service) enrichAll(ctx context.Context, articles []entity.Article) {
	ctx, cancel := context.WithTimeout(ctx, enrichTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Parallelism)

	for i := range articles {
		if articles[i].Description != "" || articles[i].URL == "" || articles[i].URL == "#" {
			continue
		}
		g.Go(func() error {
			content, err := s.fetcher.FetchContent(gctx, articles[i].URL)
			if err != nil {
				s.logger.Debug("content enrichment failed",
					slog.String("url", articles[i].URL),
					slog.Any("error", err))
				return nil
			}
			articles[i].Description = content
			return nil
		})
	}
	_ = g.Wait()
}
