package digest

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"district-digest/internal/domain/entity"
	"district-digest/internal/handler/http/pathutil"
	"district-digest/internal/handler/http/respond"
	digestUC "district-digest/internal/usecase/digest"
)

// DTO is the JSON shape of a stored digest. Articles is only populated on
// the detail endpoint.
type DTO struct {
	ID           int64            `json:"id"`
	District     string           `json:"district"`
	Date         string           `json:"date"`
	Provider     string           `json:"provider"`
	IsMock       bool             `json:"is_mock"`
	ArticleCount int              `json:"article_count"`
	Articles     []entity.Article `json:"articles,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// listResponse is the paginated digest history payload.
type listResponse struct {
	Digests []DTO `json:"digests"`
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
}

func toDTO(d *entity.Digest, withArticles bool) DTO {
	out := DTO{
		ID:           d.ID,
		District:     d.District,
		Date:         d.Date,
		Provider:     d.Provider,
		IsMock:       d.IsMock,
		ArticleCount: d.ArticleCount,
		CreatedAt:    d.CreatedAt,
	}
	if withArticles {
		out.Articles = d.Articles
	}
	return out
}

// HistoryHandler serves GET /digests.
type HistoryHandler struct {
	Svc    *digestUC.Service
	Logger *slog.Logger
}

// ServeHTTP ダイジェスト履歴取得
// @Summary      保存済みダイジェスト一覧
// @Description  保存されたダイジェストを新しい順に返します。記事本体は含まれません。
// @Tags         digests
// @Security     BearerAuth
// @Produce      json
// @Param        limit  query int false "1ページあたりの件数" default(20) maximum(100)
// @Param        offset query int false "取得開始位置" default(0)
// @Success      200 {object} listResponse "ダイジェスト一覧"
// @Failure      500 {string} string "サーバーエラー"
// @Router       /digests [get]
func (h HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	digests, total, err := h.Svc.History(r.Context(), limit, offset)
	if err != nil {
		h.Logger.Error("digest history failed",
			slog.String("error", err.Error()))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]DTO, 0, len(digests))
	for _, d := range digests {
		dtos = append(dtos, toDTO(d, false))
	}

	respond.JSON(w, http.StatusOK, listResponse{
		Digests: dtos,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	})
}

// GetHandler serves GET /digests/{id}.
type GetHandler struct {
	Svc    *digestUC.Service
	Logger *slog.Logger
}

// ServeHTTP ダイジェスト詳細取得
// @Summary      保存済みダイジェスト詳細
// @Description  指定されたIDのダイジェストを記事込みで返します
// @Tags         digests
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "ダイジェストID"
// @Success      200 {object} DTO "ダイジェスト詳細"
// @Failure      400 {string} string "Bad request - invalid digest ID"
// @Failure      404 {string} string "Not found - digest not found"
// @Router       /digests/{id} [get]
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.URL.Path, "/digests/")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	d, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, entity.ErrNotFound) || errors.Is(err, digestUC.ErrDigestNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}

	respond.JSON(w, http.StatusOK, toDTO(d, true))
}
