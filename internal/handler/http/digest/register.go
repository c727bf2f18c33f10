package digest

import (
	"log/slog"
	"net/http"

	"district-digest/internal/handler/http/auth"
	digestUC "district-digest/internal/usecase/digest"
	reportUC "district-digest/internal/usecase/report"
)

// Register registers the digest API handlers with the given mux.
// Every route requires authentication via the auth middleware; role limits
// are enforced inside Authz.
func Register(mux *http.ServeMux, digestSvc *digestUC.Service, reportSvc *reportUC.Service, logger *slog.Logger) {
	mux.Handle("POST   /fetch_news", auth.Authz(FetchHandler{Svc: digestSvc, Logger: logger}))
	mux.Handle("POST   /generate_pdf", auth.Authz(PDFHandler{Svc: reportSvc, Logger: logger}))
	mux.Handle("GET    /districts", auth.Authz(DistrictsHandler{}))
	mux.Handle("GET    /digests", auth.Authz(HistoryHandler{Svc: digestSvc, Logger: logger}))
	mux.Handle("GET    /digests/", auth.Authz(GetHandler{Svc: digestSvc, Logger: logger}))
}
