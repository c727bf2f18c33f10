// Package pdf renders a district digest into a PDF document.
// The layout mirrors the digest table: one numbered block per article with
// its category, source, and publication date, the related article list, and
// an optional body snippet when content enrichment is enabled.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"district-digest/internal/domain/entity"
	"district-digest/internal/observability/metrics"
)

// Renderer produces digest PDFs. Safe for concurrent use; each call builds
// its own document.
type Renderer struct {
	// now stamps the generation time in the footer. Injectable so tests
	// get deterministic output.
	now func() time.Time
}

// NewRenderer creates a Renderer using the wall clock.
func NewRenderer() *Renderer {
	return &Renderer{now: time.Now}
}

// NewRendererWithClock creates a Renderer with an injected clock for tests.
func NewRendererWithClock(now func() time.Time) *Renderer {
	return &Renderer{now: now}
}

// Render builds the PDF for one digest request and returns the document bytes.
func (r *Renderer) Render(req *entity.PdfRequest) ([]byte, error) {
	if req == nil || len(req.Articles) == 0 {
		return nil, fmt.Errorf("pdf render: no articles to render")
	}

	start := time.Now()

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle(fmt.Sprintf("News Digest - %s (%s)", req.District, req.Date), false)
	doc.SetAuthor("District Digest", false)
	// Creation date would otherwise embed the wall clock and break
	// byte-for-byte comparisons in tests.
	doc.SetCreationDate(r.now())

	doc.SetFooterFunc(func() {
		doc.SetY(-15)
		doc.SetFont("Helvetica", "I", 8)
		doc.SetTextColor(128, 128, 128)
		doc.CellFormat(0, 10,
			fmt.Sprintf("Generated %s  -  Page %d", r.now().Format("2006-01-02 15:04 MST"), doc.PageNo()),
			"", 0, "C", false, 0, "")
	})

	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.SetTextColor(0, 0, 0)
	doc.CellFormat(0, 10, fmt.Sprintf("News Digest - %s (%s)", req.District, req.Date),
		"", 1, "C", false, 0, "")
	doc.Ln(4)

	for i, article := range req.Articles {
		r.renderArticle(doc, i+1, article)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		metrics.RecordPDFGenerated(false)
		return nil, fmt.Errorf("pdf output: %w", err)
	}

	metrics.RecordPDFGenerated(true)
	metrics.RecordPDFGenerationDuration(time.Since(start))
	metrics.RecordPDFSize(buf.Len())
	return buf.Bytes(), nil
}

func (r *Renderer) renderArticle(doc *gofpdf.Fpdf, number int, article entity.Article) {
	// Keep an article block together when close to the page edge.
	if doc.GetY() > 250 {
		doc.AddPage()
	}

	doc.SetFont("Helvetica", "B", 12)
	doc.MultiCell(0, 6, fmt.Sprintf("%d. %s", number, textOr(article.Title, "No Title")), "", "L", false)

	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(80, 80, 80)
	doc.MultiCell(0, 5, fmt.Sprintf("%s  |  %s  |  %s",
		textOr(article.Category, "Unknown"),
		textOr(article.Source.Name, "Unknown Source"),
		textOr(article.PublishedAt, "Unknown Date")), "", "L", false)

	if article.URL != "" && article.URL != "#" {
		doc.SetTextColor(0, 0, 200)
		doc.MultiCell(0, 5, article.URL, "", "L", false)
	}

	if article.Description != "" {
		doc.SetTextColor(0, 0, 0)
		doc.MultiCell(0, 5, article.Description, "", "L", false)
	}

	doc.SetTextColor(0, 0, 0)
	if len(article.RelatedArticles) > 0 {
		doc.SetFont("Helvetica", "I", 10)
		doc.MultiCell(0, 5, "Related:", "", "L", false)
		doc.SetFont("Helvetica", "", 9)
		for _, rel := range article.RelatedArticles {
			doc.MultiCell(0, 5, fmt.Sprintf("  - %s (%s, %s)",
				textOr(rel.Title, "No Title"),
				textOr(rel.Source.Name, "Unknown Source"),
				textOr(rel.PublishedAt, "Unknown Date")), "", "L", false)
		}
	}

	doc.Ln(4)
}

// textOr substitutes fallback for an empty value.
func textOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
