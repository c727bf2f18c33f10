// Package digest provides the HTTP handlers for the digest API surface:
// news fetch, PDF generation, the district list, and stored digest history.
package digest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"district-digest/internal/domain/entity"
	"district-digest/internal/handler/http/respond"
	"district-digest/internal/observability/logging"
	digestUC "district-digest/internal/usecase/digest"
)

// FetchHandler serves POST /fetch_news.
type FetchHandler struct {
	Svc    *digestUC.Service
	Logger *slog.Logger
}

// ServeHTTP ニュース取得
// @Summary      ニュースダイジェスト取得
// @Description  指定された地区と日付のニュースを取得し、カテゴリ分類して返します
// @Tags         digests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body entity.NewsQuery true "地区と日付"
// @Success      200 {object} entity.NewsResult "分類済み記事一覧"
// @Failure      400 {string} string "Bad request - invalid district or date"
// @Failure      401 {string} string "Authentication required - missing or invalid JWT token"
// @Failure      502 {string} string "No provider could produce articles"
// @Router       /fetch_news [post]
func (h FetchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	logger := logging.WithRequestID(ctx, h.Logger)

	var query entity.NewsQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	result, err := h.Svc.Fetch(ctx, query.District, query.Date)
	if err != nil {
		var vErr *entity.ValidationError
		switch {
		case errors.As(err, &vErr):
			respond.SafeError(w, http.StatusBadRequest, err)
		case errors.Is(err, digestUC.ErrFetchFailed):
			respond.SafeError(w, http.StatusBadGateway, digestUC.ErrFetchFailed)
		default:
			respond.SafeError(w, http.StatusInternalServerError, err)
		}
		logger.Warn("fetch_news failed",
			slog.String("district", query.District),
			slog.String("date", query.Date),
			slog.String("error", err.Error()))
		return
	}

	logger.Info("fetch_news completed",
		slog.String("district", query.District),
		slog.String("date", query.Date),
		slog.Int("articles", len(result.Articles)),
		slog.Bool("is_mock", result.IsMock),
		slog.Duration("duration", time.Since(start)))

	respond.JSON(w, http.StatusOK, result)
}
