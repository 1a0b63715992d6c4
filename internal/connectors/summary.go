package connectors

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mr1hm/go-travel-brief/internal/metrics"
)

const maxSummaryRunes = 2000

type SummaryClient struct {
	baseURL string
	client  *http.Client
}

func NewSummaryClient(baseURL string, timeout time.Duration) *SummaryClient {
	return &SummaryClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(timeout),
	}
}

type pageSummary struct {
	Type    string `json:"type"`
	Title   string `json:"title" validate:"required"`
	Extract string `json:"extract"`
}

// Summary returns the encyclopedia lead text for place. For "City, Country"
// only the city is looked up. A missing page, a disambiguation page or an
// empty extract yields (nil, nil).
func (s *SummaryClient) Summary(ctx context.Context, place string) (*string, error) {
	title, _ := splitPlace(place)
	if title == "" {
		return nil, nil
	}

	endpoint := s.baseURL + "/page/summary/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))

	start := time.Now()
	var data pageSummary
	err := getJSON(ctx, s.client, endpoint, &data)

	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
		metrics.ObserveOutcome("summary", start, metrics.OutcomeEmpty)
		return nil, nil
	}
	if err != nil {
		metrics.ObserveConnector("summary", start, err)
		return nil, err
	}

	text := strings.TrimSpace(data.Extract)
	if data.Type == "disambiguation" || text == "" {
		metrics.ObserveOutcome("summary", start, metrics.OutcomeEmpty)
		return nil, nil
	}
	metrics.ObserveOutcome("summary", start, metrics.OutcomeOK)
	text = truncateRunes(text, maxSummaryRunes)
	return &text, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
