// Package cli hosts the interactive digest controllers and their terminal
// view. Controllers carry the request/response/render cycle; the View
// interface keeps them free of terminal specifics so tests drive them
// against a recording fake.
package cli

import (
	"fmt"
	"io"

	"district-digest/internal/domain/entity"
)

// View is the render surface the controllers write to.
// Implementations own layout and styling; controllers own the text.
type View interface {
	// SetStatus shows informational status text, replacing prior status.
	SetStatus(msg string)

	// SetWarning shows status text that needs attention (sample data).
	SetWarning(msg string)

	// SetError shows failure text, replacing prior status.
	SetError(msg string)

	// RenderArticles replaces the article table with the given rows,
	// in input order.
	RenderArticles(articles []entity.Article)

	// ClearArticles removes all rendered rows.
	ClearArticles()

	// ShowDownload toggles the download control.
	ShowDownload(visible bool)

	// Navigate switches the session to another screen.
	Navigate(target string)
}

// TermView renders to a terminal through lipgloss styles.
type TermView struct {
	out io.Writer
}

// NewTermView creates a terminal view writing to out.
func NewTermView(out io.Writer) *TermView {
	return &TermView{out: out}
}

// SetStatus implements View.
func (v *TermView) SetStatus(msg string) {
	fmt.Fprintln(v.out, statusStyle.Render(msg))
}

// SetWarning implements View.
func (v *TermView) SetWarning(msg string) {
	fmt.Fprintln(v.out, warnStyle.Render(msg))
}

// SetError implements View.
func (v *TermView) SetError(msg string) {
	fmt.Fprintln(v.out, errorStyle.Render(msg))
}

// RenderArticles implements View. Each article renders as a block: linked
// title, metadata line, and the related list or the literal "None".
func (v *TermView) RenderArticles(articles []entity.Article) {
	for i, a := range articles {
		title := a.Title
		if title == "" {
			title = "No Title"
		}
		url := a.URL
		if url == "" {
			url = "#"
		}
		category := a.Category
		if category == "" {
			category = "Unknown"
		}
		source := a.Source.Name
		if source == "" {
			source = "Unknown Source"
		}
		published := a.PublishedAt
		if published == "" {
			published = "Unknown Date"
		}

		fmt.Fprintf(v.out, "%s %s\n", titleStyle.Render(fmt.Sprintf("%d. %s", i+1, title)), linkStyle.Render(url))
		fmt.Fprintf(v.out, "   %s | %s | %s\n",
			dimStyle.Render(category),
			sourceStyle.Render(source),
			dimStyle.Render(published))

		if len(a.RelatedArticles) == 0 {
			fmt.Fprintf(v.out, "   %s\n", dimStyle.Render("Related: None"))
			continue
		}
		fmt.Fprintf(v.out, "   %s\n", dimStyle.Render("Related:"))
		for _, rel := range a.RelatedArticles {
			relTitle := rel.Title
			if relTitle == "" {
				relTitle = "No Title"
			}
			relSource := rel.Source.Name
			if relSource == "" {
				relSource = "Unknown Source"
			}
			relDate := rel.PublishedAt
			if relDate == "" {
				relDate = "Unknown Date"
			}
			fmt.Fprintf(v.out, "     - %s (%s, %s) %s\n",
				relTitle, relSource, relDate, linkStyle.Render(rel.URL))
		}
	}
}

// ClearArticles implements View. A terminal scrolls rather than repaints,
// so clearing is a visual separator before the next render.
func (v *TermView) ClearArticles() {
	fmt.Fprintln(v.out, dimStyle.Render("────────────────────────────────────────"))
}

// ShowDownload implements View.
func (v *TermView) ShowDownload(visible bool) {
	if visible {
		fmt.Fprintln(v.out, dimStyle.Render("Type 'download' to save this digest as PDF."))
	}
}

// Navigate implements View.
func (v *TermView) Navigate(target string) {
	fmt.Fprintln(v.out, headerStyle.Render("-> "+target))
}
