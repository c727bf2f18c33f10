package digest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"district-digest/internal/domain/entity"
	"district-digest/internal/infra/newsprovider"
	"district-digest/internal/observability/metrics"
	"district-digest/internal/observability/tracing"
	"district-digest/internal/repository"
)

// relatedParallelism bounds concurrent related-article lookups per fetch.
// One lookup runs per distinct category, so this rarely exceeds three.
const relatedParallelism = 3

// History paging bounds, matching the capping idiom of the list endpoints.
const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// policeKeywords gate which articles make it into a digest. The providers
// run a state-wide query, so anything that mentions none of these in its
// title or description is off-topic and dropped before classification.
var policeKeywords = []string{
	"crime", "police", "arrest", "theft", "robbery",
	"assault", "public noise", "disturbance", "investigation",
}

// NewsChain is the provider chain surface the service depends on.
// *newsprovider.Chain satisfies it; tests substitute a fake.
type NewsChain interface {
	FetchNews(ctx context.Context, district, date string) (*newsprovider.Result, error)
	FetchRelated(ctx context.Context, providerName, category, district, date string) []entity.RelatedArticle
}

// Classifier assigns a category to an article.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, title, description string) (string, error)
}

// Notifier receives completed digests. Implemented by the notify service.
type Notifier interface {
	NotifyDigestReady(ctx context.Context, digest *entity.Digest) error
}

// Service builds district news digests.
// A digest fetch walks the provider chain, classifies every article, attaches
// related articles per category, and persists the result best-effort. The
// fetch itself never fails on persistence or notification problems.
type Service struct {
	chain      NewsChain
	classifier Classifier
	digestRepo repository.DigestRepository
	notifier   Notifier
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a digest Service.
// digestRepo and notifier may be nil; persistence and notifications are then
// skipped (the diagnostic tool runs this way).
func NewService(
	chain NewsChain,
	classifier Classifier,
	digestRepo repository.DigestRepository,
	notifier Notifier,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		chain:      chain,
		classifier: classifier,
		digestRepo: digestRepo,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock replaces the service clock. Test helper.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Fetch builds the digest for one district and date.
// Validation failures return an entity.ValidationError before any provider
// is contacted.
func (s *Service) Fetch(ctx context.Context, district, date string) (*entity.NewsResult, error) {
	if err := entity.ValidateDistrict(district); err != nil {
		return nil, err
	}
	if err := entity.ValidateDate(date, s.now()); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "digest.fetch")
	defer span.End()

	start := time.Now()

	result, err := s.chain.FetchNews(ctx, district, date)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, district, err)
	}

	articles := filterRelevant(result.Articles)
	if dropped := len(result.Articles) - len(articles); dropped > 0 {
		s.logger.Debug("dropped off-topic articles",
			slog.String("district", district),
			slog.Int("dropped", dropped))
	}
	articles = s.classifyAll(ctx, articles)
	s.attachRelated(ctx, articles, result.Provider, district, date)

	s.logger.Info("digest assembled",
		slog.String("district", district),
		slog.String("date", date),
		slog.String("provider", result.Provider),
		slog.Bool("is_mock", result.IsMock),
		slog.Int("articles", len(articles)),
		slog.Duration("duration", time.Since(start)))

	s.persist(ctx, district, date, result.Provider, result.IsMock, articles)

	return &entity.NewsResult{
		Articles: articles,
		IsMock:   result.IsMock,
	}, nil
}

// filterRelevant keeps only policing-related articles, preserving input
// order. Matching is a case-insensitive substring check over title and
// description.
func filterRelevant(articles []entity.Article) []entity.Article {
	kept := make([]entity.Article, 0, len(articles))
	for _, a := range articles {
		content := strings.ToLower(a.Title + " " + a.Description)
		for _, keyword := range policeKeywords {
			if strings.Contains(content, keyword) {
				kept = append(kept, a)
				break
			}
		}
	}
	return kept
}

// classifyAll assigns a category to every article that arrived without one.
// Classification is decoration: a classifier error leaves the article in the
// broad Crime category rather than failing the fetch.
func (s *Service) classifyAll(ctx context.Context, articles []entity.Article) []entity.Article {
	ctx, span := tracing.StartSpan(ctx, "digest.classify")
	defer span.End()

	for i := range articles {
		if articles[i].Category != "" {
			continue
		}
		category, err := s.classifier.Classify(ctx, articles[i].Title, articles[i].Description)
		if err != nil {
			s.logger.Warn("classification failed, defaulting to Crime",
				slog.String("classifier", s.classifier.Name()),
				slog.String("title", articles[i].Title),
				slog.Any("error", err))
			category = entity.CategoryCrime
		}
		articles[i].Category = category
	}
	return articles
}

// attachRelated fetches related articles once per distinct category and
// attaches them to every article of that category. Lookups run concurrently
// under a bounded errgroup; failures degrade to an empty related list.
func (s *Service) attachRelated(ctx context.Context, articles []entity.Article, providerName, district, date string) {
	ctx, span := tracing.StartSpan(ctx, "digest.related")
	defer span.End()

	categories := make(map[string][]entity.RelatedArticle)
	for _, a := range articles {
		if a.Category != "" {
			categories[a.Category] = nil
		}
	}
	if len(categories) == 0 {
		return
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(relatedParallelism)

	for category := range categories {
		g.Go(func() error {
			related := s.chain.FetchRelated(gctx, providerName, category, district, date)
			mu.Lock()
			categories[category] = related
			mu.Unlock()
			return nil
		})
	}
	// Goroutines only record results; no error path.
	_ = g.Wait()

	for i := range articles {
		related := categories[articles[i].Category]
		if related == nil {
			related = []entity.RelatedArticle{}
		}
		articles[i].RelatedArticles = related
	}
}

// persist stores the digest and dispatches the completion notification.
// Both are best-effort; the fetched result is already in the caller's hands.
func (s *Service) persist(ctx context.Context, district, date, provider string, isMock bool, articles []entity.Article) {
	if s.digestRepo == nil {
		return
	}

	d := &entity.Digest{
		District:     district,
		Date:         date,
		Provider:     provider,
		IsMock:       isMock,
		ArticleCount: len(articles),
		Articles:     articles,
	}

	id, err := s.digestRepo.Save(ctx, d)
	if err != nil {
		s.logger.Warn("digest persistence failed",
			slog.String("district", district),
			slog.String("date", date),
			slog.Any("error", err))
		return
	}
	d.ID = id

	if count, err := s.digestRepo.Count(ctx); err == nil {
		metrics.UpdateDigestsTotal(int(count))
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyDigestReady(ctx, d); err != nil {
			s.logger.Warn("digest notification failed",
				slog.Int64("digest_id", id),
				slog.Any("error", err))
		}
	}
}

// History returns stored digests, newest first, with capped limit/offset
// paging. Articles are not populated; use Get for the full payload.
func (s *Service) History(ctx context.Context, limit, offset int) ([]*entity.Digest, int64, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	digests, err := s.digestRepo.ListRecent(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list digests: %w", err)
	}
	total, err := s.digestRepo.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count digests: %w", err)
	}
	return digests, total, nil
}

// Get returns one stored digest with its full article payload.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Digest, error) {
	d, err := s.digestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return d, nil
}
