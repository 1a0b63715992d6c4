package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/mr1hm/go-travel-brief/internal/cache"
	"github.com/mr1hm/go-travel-brief/internal/metrics"
	"github.com/mr1hm/go-travel-brief/internal/models"
)

const (
	newsFeedKey  = "news:feed"
	maxArticles  = 5
	titleScore   = 10
	snippetScore = 5
	keywordScore = 2
)

// Matched as lower-case substrings of title and snippet.
var travelKeywords = []string{
	// leisure and events
	"travel", "tourism", "tourist", "visit", "holiday", "vacation", "hotel",
	"festival", "museum", "heritage", "beach", "cruise",
	// transport
	"flight", "airport", "airline", "train", "rail", "metro", "ferry", "strike",
	// safety
	"safety", "crime", "protest", "unrest", "terror",
	// weather extremes
	"heatwave", "storm", "flood", "wildfire", "hurricane", "typhoon", "earthquake",
	// health
	"health", "outbreak", "vaccination", "vaccine", "disease",
	// travel documents
	"visa", "passport", "border", "customs",
}

type NewsConfig struct {
	FeedURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

type NewsClient struct {
	cfg    NewsConfig
	client *http.Client
	cache  cache.Cache
}

func NewNewsClient(cfg NewsConfig, c cache.Cache) *NewsClient {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 6 * time.Hour
	}
	return &NewsClient{
		cfg:    cfg,
		client: newHTTPClient(cfg.Timeout),
		cache:  c,
	}
}

// ForPlace returns the top scoring feed articles for place. Articles that
// score zero are dropped.
func (n *NewsClient) ForPlace(ctx context.Context, place string) ([]models.Article, error) {
	items, err := n.feed(ctx)
	if err != nil {
		return nil, err
	}
	return RankArticles(place, items, maxArticles), nil
}

// RankArticles scores items against place, drops zero scores and returns up
// to limit articles, highest score first. Equal scores keep feed order.
func RankArticles(place string, items []models.Article, limit int) []models.Article {
	term, _ := splitPlace(place)
	var scored []models.Article
	for _, it := range items {
		s := ScoreArticle(term, it.Title, it.Snippet)
		if s == 0 {
			continue
		}
		it.Score = s
		scored = append(scored, it)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// ScoreArticle weighs a mention of place in the title or snippet plus each
// traveller-relevant keyword found anywhere in the article.
func ScoreArticle(place, title, snippet string) int {
	place = strings.ToLower(strings.TrimSpace(place))
	title = strings.ToLower(title)
	snippet = strings.ToLower(snippet)

	score := 0
	if place != "" {
		if strings.Contains(title, place) {
			score += titleScore
		}
		if strings.Contains(snippet, place) {
			score += snippetScore
		}
	}

	text := title + " " + snippet
	for _, kw := range travelKeywords {
		if strings.Contains(text, kw) {
			score += keywordScore
		}
	}
	return score
}

func (n *NewsClient) feed(ctx context.Context) ([]models.Article, error) {
	if data, ok := n.cache.Get(ctx, newsFeedKey); ok {
		var items []models.Article
		if err := json.Unmarshal(data, &items); err == nil {
			metrics.CacheResult("news", true)
			return items, nil
		}
		slog.Warn("discarding unreadable news cache entry")
	}
	metrics.CacheResult("news", false)

	start := time.Now()
	items, err := n.fetch(ctx)
	metrics.ObserveConnector("news", start, err)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("error encoding feed items: %w", err)
	}
	n.cache.Set(ctx, newsFeedKey, data, n.cfg.CacheTTL)
	return items, nil
}

func (n *NewsClient) fetch(ctx context.Context) ([]models.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.cfg.FeedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error parsing feed: %w", err)
	}

	source := strings.TrimSpace(feed.Title)
	items := make([]models.Article, 0, len(feed.Items))
	for _, it := range feed.Items {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			continue
		}
		a := models.Article{
			Title:   title,
			Link:    strings.TrimSpace(it.Link),
			Snippet: plainText(it.Description),
			Source:  source,
		}
		if it.PublishedParsed != nil {
			t := it.PublishedParsed.UTC()
			a.PublishedAt = &t
		} else if it.UpdatedParsed != nil {
			t := it.UpdatedParsed.UTC()
			a.PublishedAt = &t
		}
		items = append(items, a)
	}
	return items, nil
}

// plainText strips markup from an HTML fragment and collapses whitespace.
func plainText(html string) string {
	if !strings.Contains(html, "<") {
		return strings.Join(strings.Fields(html), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.Join(strings.Fields(html), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
