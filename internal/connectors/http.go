package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const defaultTimeout = 10 * time.Second

var validate = validator.New()

// StatusError is returned when an upstream answers with a non-200 status.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d - status: %s", e.Code, e.Status)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
	}
}

// getJSON fetches url, decodes the body into out and validates it.
func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding resp.Body: %w", err)
	}

	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("invalid upstream payload: %w", err)
	}
	return nil
}

const userAgent = "go-travel-brief/1.0"

// normalizeKey lowercases s and collapses runs of anything that is not a
// letter or digit into single spaces.
func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			prevSpace = false
			continue
		}
		if !prevSpace {
			b.WriteByte(' ')
			prevSpace = true
		}
	}

	return strings.TrimSpace(b.String())
}

// splitPlace splits "City, Country" into its trimmed parts. country is empty
// when place has no comma.
func splitPlace(place string) (city, country string) {
	city, country, found := strings.Cut(place, ",")
	if !found {
		return strings.TrimSpace(place), ""
	}
	return strings.TrimSpace(city), strings.TrimSpace(country)
}
