package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	apiclient "district-digest/internal/client"
	"district-digest/internal/domain/entity"
)

// User-facing messages of the fetch flow. Validation and failure texts are
// part of the controller's contract; tests assert them verbatim.
const (
	msgSelectDistrict  = "Please select a district"
	msgSelectDate      = "Please select a date"
	msgBadDateFormat   = "Invalid date format (use YYYY-MM-DD)"
	msgFutureDate      = "Date cannot be in the future"
	msgFetching        = "Fetching news..."
	msgFetchFailed     = "Failed to fetch news. Please try again later."
	msgTimeout         = "Request timed out. Please try again."
	msgNoArticles      = "No articles found for the selected district and date."
	msgLoaded          = "Articles loaded successfully."
	msgGenerating      = "Generating PDF..."
	msgPDFFailed       = "Failed to generate PDF. Please try again later."
	msgPDFDownloaded   = "PDF downloaded successfully"
	pdfFailedPrefix    = "PDF generation failed: "
	serverErrorPrefix  = "Server error: "
	genericErrorPrefix = "Error: "
)

var dateFormatRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// DigestClient is the API surface the news controller depends on.
// *client.Client satisfies it.
type DigestClient interface {
	FetchNews(ctx context.Context, query entity.NewsQuery) (*entity.NewsResult, error)
	GeneratePDF(ctx context.Context, req entity.PdfRequest) ([]byte, error)
}

// NewsController drives the fetch/render/download cycle.
//
// The download binding is controller-held state: at most one PdfRequest,
// holding the exact article slice of the last successful render, replaced
// atomically on each render. Overlapping fetches are resolved with a
// request-generation counter: only the most recently issued request may
// apply its outcome, stale responses are discarded in full.
type NewsController struct {
	client      DigestClient
	view        View
	downloadDir string
	now         func() time.Time

	generation atomic.Uint64

	mu      sync.Mutex
	pending *entity.PdfRequest
}

// NewNewsController creates a controller rendering into view and saving
// PDFs under downloadDir.
func NewNewsController(client DigestClient, view View, downloadDir string) *NewsController {
	return &NewsController{
		client:      client,
		view:        view,
		downloadDir: downloadDir,
		now:         time.Now,
	}
}

// WithClock replaces the validation clock. Test helper.
func (c *NewsController) WithClock(now func() time.Time) *NewsController {
	c.now = now
	return c
}

// FetchNews validates the selection and runs one fetch/render cycle.
// Validation is sequential: the first failing check reports and stops,
// with no network call made.
func (c *NewsController) FetchNews(ctx context.Context, district, date string) {
	if district == "" {
		c.view.SetError(msgSelectDistrict)
		return
	}
	if date == "" {
		c.view.SetError(msgSelectDate)
		return
	}
	if !dateFormatRe.MatchString(date) {
		c.view.SetError(msgBadDateFormat)
		return
	}
	if isFutureDate(date, c.now()) {
		c.view.SetError(msgFutureDate)
		return
	}

	c.view.SetStatus(msgFetching)

	generation := c.generation.Add(1)

	result, err := c.client.FetchNews(ctx, entity.NewsQuery{District: district, Date: date})

	// A newer fetch was issued while this one was in flight; its outcome
	// owns the view now. Discard ours entirely.
	if c.generation.Load() != generation {
		return
	}

	if err != nil {
		c.applyFailure(err)
		return
	}
	c.applyResult(result, district, date)
}

// applyFailure maps a fetch error to status text and clears the rendered
// state. Every failure path hides the download control.
func (c *NewsController) applyFailure(err error) {
	switch {
	case errors.Is(err, apiclient.ErrTimeout):
		c.view.SetError(msgTimeout)
	default:
		var statusErr *apiclient.StatusError
		if errors.As(err, &statusErr) {
			if statusErr.Message != "" {
				c.view.SetError(statusErr.Message)
			} else {
				c.view.SetError(msgFetchFailed)
			}
		} else {
			c.view.SetError(genericErrorPrefix + err.Error())
		}
	}
	c.clearRendered()
}

// applyResult renders a successful response.
func (c *NewsController) applyResult(result *entity.NewsResult, district, date string) {
	if result.Error != "" {
		c.view.SetError(serverErrorPrefix + result.Error)
		c.clearRendered()
		return
	}
	if len(result.Articles) == 0 {
		c.view.SetStatus(msgNoArticles)
		c.clearRendered()
		return
	}

	if result.IsMock {
		c.view.SetWarning(fmt.Sprintf(
			"Showing sample data for %s. Verify your Currents API key to get live results.", district))
	} else {
		c.view.SetStatus(msgLoaded)
	}

	c.view.ClearArticles()
	c.view.RenderArticles(result.Articles)
	c.view.ShowDownload(true)

	c.mu.Lock()
	c.pending = &entity.PdfRequest{
		Articles: result.Articles,
		District: district,
		Date:     date,
	}
	c.mu.Unlock()
}

// clearRendered empties the table, hides the download control, and drops
// the download binding.
func (c *NewsController) clearRendered() {
	c.view.ClearArticles()
	c.view.ShowDownload(false)

	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
}

// Download generates and saves the PDF for the last rendered digest.
// Failures change only the status text; the rendered table stays as-is.
func (c *NewsController) Download(ctx context.Context) {
	c.mu.Lock()
	pending := c.pending
	c.mu.Unlock()

	if pending == nil {
		c.view.SetError("Nothing to download. Fetch news first.")
		return
	}

	c.view.SetStatus(msgGenerating)

	data, err := c.client.GeneratePDF(ctx, *pending)
	if err != nil {
		switch {
		case errors.Is(err, apiclient.ErrTimeout):
			c.view.SetError(msgTimeout)
		default:
			var statusErr *apiclient.StatusError
			if errors.As(err, &statusErr) && statusErr.Message != "" {
				c.view.SetError(pdfFailedPrefix + statusErr.Message)
			} else {
				c.view.SetError(msgPDFFailed)
			}
		}
		return
	}

	path := filepath.Join(c.downloadDir, fmt.Sprintf("news_digest_%s_%s.pdf", pending.District, pending.Date))
	if err := writeFileCleanly(path, data); err != nil {
		c.view.SetError(genericErrorPrefix + err.Error())
		return
	}
	c.view.SetStatus(msgPDFDownloaded)
}

// writeFileCleanly writes data to path, removing the partial file on any
// error so a failed download never leaves debris behind.
func writeFileCleanly(path string, data []byte) (err error) {
	f, err := os.Create(path) // #nosec G304 -- path is built from the validated query
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if _, err = f.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// isFutureDate reports whether the date's calendar day lies after today in
// IST. The comparison is day against day, so a date equal to today passes.
func isFutureDate(date string, now time.Time) bool {
	sel, err := time.ParseInLocation("2006-01-02", date, entity.IST)
	if err != nil {
		return true // unparseable beyond the format check: treat as invalid
	}
	nowIST := now.In(entity.IST)
	today := time.Date(nowIST.Year(), nowIST.Month(), nowIST.Day(), 0, 0, 0, 0, entity.IST)
	return sel.After(today)
}
