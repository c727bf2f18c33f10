// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as Article, Digest and User, along with
// their validation rules and domain-specific errors.
package entity

// Article categories assigned by the classifier.
const (
	CategoryCrime       = "Crime"
	CategoryTheft       = "Theft"
	CategoryPublicNoise = "Public Noise"
)

// ArticleSource identifies the outlet an article came from.
type ArticleSource struct {
	Name string `json:"name"`
}

// RelatedArticle is a trimmed article attached to a main article.
// It carries no category and no further nesting.
type RelatedArticle struct {
	Title       string        `json:"title"`
	URL         string        `json:"url"`
	Source      ArticleSource `json:"source"`
	PublishedAt string        `json:"publishedAt"`
}

// Article represents one news item in a digest response.
//
// PublishedAt is kept as the provider-supplied string and is never parsed;
// it is rendered verbatim or replaced by a fallback when empty.
type Article struct {
	Title           string           `json:"title"`
	URL             string           `json:"url"`
	Category        string           `json:"category"`
	Source          ArticleSource    `json:"source"`
	PublishedAt     string           `json:"publishedAt"`
	Description     string           `json:"description,omitempty"`
	RelatedArticles []RelatedArticle `json:"related_articles"`
}

// NewsQuery is one digest request: a district from the fixed set and a
// calendar date no later than today in IST.
type NewsQuery struct {
	District string `json:"district"`
	Date     string `json:"date"`
}

// NewsResult is the payload of one fetch operation. Articles keep provider
// order. IsMock is true when sample data was substituted for live results.
type NewsResult struct {
	Articles []Article `json:"articles"`
	IsMock   bool      `json:"is_mock"`
	Error    string    `json:"error,omitempty"`
}

// PdfRequest carries the article set of the last fetch into PDF generation,
// together with the district and date it was fetched for.
type PdfRequest struct {
	Articles []Article `json:"articles"`
	District string    `json:"district"`
	Date     string    `json:"date"`
}
