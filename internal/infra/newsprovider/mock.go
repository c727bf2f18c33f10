package newsprovider

import (
	"context"
	"fmt"
	"strings"

	"district-digest/internal/domain/entity"
)

// MockName is the chain identifier of the sample data provider.
// Responses served by it are flagged is_mock so the dashboard can warn users.
const MockName = "mock"

// Mock implements Provider with deterministic sample data. It sits at the
// end of the chain and never fails, guaranteeing every fetch produces a
// renderable digest even with no API key and no network.
type Mock struct{}

// NewMock creates the sample data provider.
func NewMock() *Mock {
	return &Mock{}
}

// Name implements Provider.
func (p *Mock) Name() string { return MockName }

// FetchNews returns two sample articles for the district, dated on the digest date.
func (p *Mock) FetchNews(_ context.Context, district, date string) ([]entity.Article, error) {
	return sampleArticles(district, date, false), nil
}

// FetchRelated returns sample related articles, capped like live results.
func (p *Mock) FetchRelated(_ context.Context, _, district, date string) ([]entity.RelatedArticle, error) {
	return toRelated(sampleArticles(district, date, true)), nil
}

// sampleArticles builds the fixed sample set for a district. Related samples
// carry a "Related " title prefix and later timestamps so they are
// distinguishable from main results in the table.
func sampleArticles(district, date string, related bool) []entity.Article {
	prefix := ""
	hours := [2]int{10, 12}
	if related {
		prefix = "Related "
		hours = [2]int{14, 16}
	}

	return []entity.Article{
		{
			Title:       fmt.Sprintf("%sMock Crime Incident in %s", prefix, district),
			Description: fmt.Sprintf("A %stheft occurred in %s city center.", strings.ToLower(prefix), district),
			Source:      entity.ArticleSource{Name: "Mock News Source"},
			PublishedAt: fmt.Sprintf("%sT%d:00:00Z", date, hours[0]),
			URL:         "http://example.com",
		},
		{
			Title:       fmt.Sprintf("%sPublic Noise Complaint in %s", prefix, district),
			Description: fmt.Sprintf("Residents reported %spublic noise disturbances in %s.", strings.ToLower(prefix), district),
			Source:      entity.ArticleSource{Name: "Mock News Source"},
			PublishedAt: fmt.Sprintf("%sT%d:00:00Z", date, hours[1]),
			URL:         "http://example.com",
		},
	}
}
