package digest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"district-digest/internal/domain/entity"
	"district-digest/internal/handler/http/respond"
	"district-digest/internal/observability/logging"
	reportUC "district-digest/internal/usecase/report"
)

// PDFHandler serves POST /generate_pdf.
type PDFHandler struct {
	Svc    *reportUC.Service
	Logger *slog.Logger
}

// ServeHTTP PDF生成
// @Summary      ダイジェストPDF生成
// @Description  取得済みの記事一覧からPDFドキュメントを生成してダウンロードします
// @Tags         digests
// @Security     BearerAuth
// @Accept       json
// @Produce      application/pdf
// @Param        request body entity.PdfRequest true "記事一覧と地区・日付"
// @Success      200 {file} binary "PDFドキュメント"
// @Failure      400 {string} string "Bad request - no articles"
// @Failure      401 {string} string "Authentication required - missing or invalid JWT token"
// @Failure      500 {string} string "PDF生成失敗"
// @Router       /generate_pdf [post]
func (h PDFHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	logger := logging.WithRequestID(ctx, h.Logger)

	var req entity.PdfRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	data, err := h.Svc.Generate(ctx, &req)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, reportUC.ErrNoArticles) {
			code = http.StatusBadRequest
		}
		logger.Warn("generate_pdf failed",
			slog.String("district", req.District),
			slog.String("date", req.Date),
			slog.String("error", err.Error()))
		respond.SafeError(w, code, err)
		return
	}

	logger.Info("generate_pdf completed",
		slog.String("district", req.District),
		slog.String("date", req.Date),
		slog.Int("articles", len(req.Articles)),
		slog.Int("bytes", len(data)),
		slog.Duration("duration", time.Since(start)))

	filename := fmt.Sprintf("news_digest_%s_%s.pdf", req.District, req.Date)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.Error("failed to write PDF response",
			slog.String("error", err.Error()))
	}
}
