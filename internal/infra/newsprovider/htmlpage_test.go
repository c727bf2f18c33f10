package newsprovider_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"district-digest/internal/infra/newsprovider"
)

const listingPageHTML = `<!DOCTYPE html>
<html>
<body>
  <div class="sidebar"><a href="/about">About us</a></div>
  <ul class="crime-news">
    <li class="story">
      <h3 class="headline">Burglary at jewellery shop under investigation</h3>
      <a class="more" href="/news/2025/burglary-guntur">Read more</a>
      <time datetime="2025-03-14T06:00:00Z">14 Mar 2025</time>
    </li>
    <li class="story">
      <h3 class="headline">  Police step up night patrols  </h3>
      <a class="more" href="https://other.example/patrols">Read more</a>
      <time>13 Mar 2025</time>
    </li>
    <li class="story">
      <h3 class="headline"></h3>
    </li>
  </ul>
</body>
</html>`

func guntorPage(pageURL string) newsprovider.PageConfig {
	return newsprovider.PageConfig{
		District:          "Guntur",
		URL:               pageURL,
		ItemSelector:      "li.story",
		TitleSelector:     "h3.headline",
		LinkSelector:      "a.more",
		PublishedSelector: "time",
		SourceName:        "Guntur Mirror",
	}
}

func TestHTMLPage_FetchNews(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "DistrictDigestBot" {
			t.Errorf("User-Agent = %q", got)
		}
		fmt.Fprint(w, listingPageHTML)
	}))
	t.Cleanup(server.Close)

	provider, err := newsprovider.NewHTMLPage([]newsprovider.PageConfig{guntorPage(server.URL + "/crime")}, server.Client())
	if err != nil {
		t.Fatalf("NewHTMLPage() error = %v", err)
	}

	articles, err := provider.FetchNews(context.Background(), "Guntur", "2025-03-15")
	if err != nil {
		t.Fatalf("FetchNews() error = %v", err)
	}
	if len(articles) != 3 {
		t.Fatalf("articles length = %d, want 3", len(articles))
	}

	if articles[0].Title != "Burglary at jewellery shop under investigation" {
		t.Errorf("articles[0].Title = %q", articles[0].Title)
	}
	// Relative hrefs resolve against the page URL.
	if want := server.URL + "/news/2025/burglary-guntur"; articles[0].URL != want {
		t.Errorf("articles[0].URL = %q, want %q", articles[0].URL, want)
	}
	if articles[0].PublishedAt != "2025-03-14T06:00:00Z" {
		t.Errorf("articles[0].PublishedAt = %q, want the datetime attribute", articles[0].PublishedAt)
	}
	if articles[0].Source.Name != "Guntur Mirror" {
		t.Errorf("articles[0].Source.Name = %q", articles[0].Source.Name)
	}

	if articles[1].Title != "Police step up night patrols" {
		t.Errorf("articles[1].Title = %q, want trimmed text", articles[1].Title)
	}
	if articles[1].URL != "https://other.example/patrols" {
		t.Errorf("articles[1].URL = %q, absolute hrefs must pass through", articles[1].URL)
	}
	if articles[1].PublishedAt != "13 Mar 2025" {
		t.Errorf("articles[1].PublishedAt = %q, want element text when datetime is absent", articles[1].PublishedAt)
	}

	if articles[2].Title != "No Title" {
		t.Errorf("articles[2].Title = %q, want %q", articles[2].Title, "No Title")
	}
	if articles[2].URL != "" {
		t.Errorf("articles[2].URL = %q, want empty", articles[2].URL)
	}
	if articles[2].PublishedAt != "Unknown Date" {
		t.Errorf("articles[2].PublishedAt = %q, want %q", articles[2].PublishedAt, "Unknown Date")
	}
}

func TestHTMLPage_FetchNews_SourceFallsBackToHostname(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingPageHTML)
	}))
	t.Cleanup(server.Close)

	page := guntorPage(server.URL)
	page.SourceName = ""

	provider, err := newsprovider.NewHTMLPage([]newsprovider.PageConfig{page}, server.Client())
	if err != nil {
		t.Fatalf("NewHTMLPage() error = %v", err)
	}

	articles, err := provider.FetchNews(context.Background(), "Guntur", "2025-03-15")
	if err != nil {
		t.Fatalf("FetchNews() error = %v", err)
	}

	base, _ := url.Parse(server.URL)
	if articles[0].Source.Name != base.Hostname() {
		t.Errorf("Source.Name = %q, want hostname %q", articles[0].Source.Name, base.Hostname())
	}
}

func TestHTMLPage_FetchNews_UnconfiguredDistrict(t *testing.T) {
	provider, err := newsprovider.NewHTMLPage([]newsprovider.PageConfig{guntorPage("https://pages.example/guntur")}, nil)
	if err != nil {
		t.Fatalf("NewHTMLPage() error = %v", err)
	}

	_, err = provider.FetchNews(context.Background(), "Krishna", "2025-03-15")
	if !errors.Is(err, newsprovider.ErrNotConfigured) {
		t.Fatalf("FetchNews() error = %v, want ErrNotConfigured", err)
	}
	if !strings.Contains(err.Error(), "Krishna") {
		t.Errorf("error = %v, want district name included", err)
	}
}

func TestHTMLPage_FetchRelated_Unsupported(t *testing.T) {
	provider, err := newsprovider.NewHTMLPage(nil, nil)
	if err != nil {
		t.Fatalf("NewHTMLPage() error = %v", err)
	}

	_, err = provider.FetchRelated(context.Background(), "Theft", "Guntur", "2025-03-15")
	if !errors.Is(err, newsprovider.ErrUnsupported) {
		t.Fatalf("FetchRelated() error = %v, want ErrUnsupported", err)
	}
}

func TestHTMLPage_InvalidPageConfig(t *testing.T) {
	tests := []struct {
		name string
		page newsprovider.PageConfig
	}{
		{
			name: "unknown district",
			page: newsprovider.PageConfig{District: "Hyderabad", URL: "https://x.example", ItemSelector: "li"},
		},
		{
			name: "missing url",
			page: newsprovider.PageConfig{District: "Guntur", ItemSelector: "li"},
		},
		{
			name: "missing item selector",
			page: newsprovider.PageConfig{District: "Guntur", URL: "https://x.example"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := newsprovider.NewHTMLPage([]newsprovider.PageConfig{tt.page}, nil); err == nil {
				t.Fatal("NewHTMLPage() expected validation error")
			}
		})
	}
}
