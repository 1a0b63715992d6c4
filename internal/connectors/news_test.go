package connectors

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr1hm/go-travel-brief/internal/cache"
	"github.com/mr1hm/go-travel-brief/internal/models"
)

func rssFeed(items ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>World News</title>
<link>https://news.example.com</link>
<description>Test feed</description>
` + strings.Join(items, "\n") + `
</channel>
</rss>`
}

func rssItem(title, description string) string {
	return fmt.Sprintf(`<item>
<title>%s</title>
<link>https://news.example.com/%d</link>
<description><![CDATA[%s]]></description>
<pubDate>Wed, 01 Jul 2026 10:00:00 GMT</pubDate>
</item>`, title, len(title), description)
}

func TestScoreArticle(t *testing.T) {
	tests := []struct {
		name    string
		place   string
		title   string
		snippet string
		want    int
	}{
		{"title and two keywords", "Lisbon", "Lisbon tourism booms", "New flight routes announced", 14},
		{"title and snippet", "Lisbon", "Lisbon council meets", "The mayor of Lisbon said", 15},
		{"snippet only", "Lisbon", "Council meets", "The mayor of Lisbon said", 5},
		{"keyword only", "Lisbon", "Hotel prices rise", "", 2},
		{"nothing", "Lisbon", "Markets fall", "Stocks slid", 0},
		{"case insensitive", "lisbon", "LISBON", "", 10},
		{"travel documents", "", "New visa and passport rules announced", "", 4},
		{"transport", "", "Rail strike halts trains nationwide", "", 6},
		{"weather extremes", "", "Heatwave and wildfire warnings issued", "", 4},
		{"health", "", "Measles outbreak prompts vaccination drive", "", 4},
		{"safety", "", "Crime and safety warning for protests", "", 6},
		{"festivals", "", "Carnival festival returns", "", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreArticle(tt.place, tt.title, tt.snippet))
		})
	}
}

func TestScoreArticle_TitleAndTwoKeywordsAtLeast14(t *testing.T) {
	got := ScoreArticle("Kyoto", "Kyoto festival draws visitors", "Temples and museum crowds")
	assert.GreaterOrEqual(t, got, 14)
}

func TestRankArticles(t *testing.T) {
	items := []models.Article{
		{Title: "Markets fall"},
		{Title: "Hotel prices rise"},
		{Title: "Rome travel chaos", Snippet: "Airport strike in Rome"},
		{Title: "Rome election"},
		{Title: "Beach season opens"},
		{Title: "Rome museum reopens"},
		{Title: "Cruise ships return"},
		{Title: "Holiday plans"},
	}

	got := RankArticles("Rome, Italy", items, 5)
	require.Len(t, got, 5)

	assert.Equal(t, "Rome travel chaos", got[0].Title)
	assert.Equal(t, 21, got[0].Score)
	assert.Equal(t, "Rome museum reopens", got[1].Title)
	assert.Equal(t, "Rome election", got[2].Title)
	// Equal scores keep feed order.
	assert.Equal(t, "Hotel prices rise", got[3].Title)
	assert.Equal(t, "Beach season opens", got[4].Title)

	for _, a := range got {
		assert.NotZero(t, a.Score)
	}
}

func TestNews_ForPlace(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssFeed(
			rssItem("Stocks slide", "<p>Markets</p>"),
			rssItem("Tokyo hotel boom", "<p>Tourism in <b>Tokyo</b> is up</p>"),
			rssItem("Osaka expo", "<p>Visitors flock</p>"),
		)))
	}))
	defer srv.Close()

	client := NewNewsClient(NewsConfig{FeedURL: srv.URL, Timeout: 2 * time.Second, CacheTTL: time.Hour}, cache.NewMemory(0))
	ctx := context.Background()

	articles, err := client.ForPlace(ctx, "Tokyo")
	require.NoError(t, err)
	require.Len(t, articles, 2)

	top := articles[0]
	assert.Equal(t, "Tokyo hotel boom", top.Title)
	assert.Equal(t, "Tourism in Tokyo is up", top.Snippet)
	assert.Equal(t, "World News", top.Source)
	require.NotNil(t, top.PublishedAt)
	assert.Equal(t, 2026, top.PublishedAt.Year())

	// Feed is fetched once and scored per place.
	articles, err = client.ForPlace(ctx, "Osaka")
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "Osaka expo", articles[0].Title)
	assert.Equal(t, 12, articles[0].Score)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNews_FeedFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not a feed"))
	}))
	defer srv.Close()

	client := NewNewsClient(NewsConfig{FeedURL: srv.URL}, cache.NewMemory(0))
	_, err := client.ForPlace(context.Background(), "Tokyo")
	assert.Error(t, err)
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Hello world again", plainText("<div>Hello <i>world</i></div>\n\n<p>again</p>"))
	assert.Equal(t, "no markup here", plainText("  no   markup\nhere "))
}
