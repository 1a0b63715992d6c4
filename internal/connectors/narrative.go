package connectors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mr1hm/go-travel-brief/internal/metrics"
	"github.com/mr1hm/go-travel-brief/internal/models"
)

var (
	ErrNarrativeTimeout = errors.New("narrative generation timed out")
	ErrNarrativeFailed  = errors.New("narrative generation failed")
)

// ConfigError reports a missing or invalid setting needed by one call.
type ConfigError struct {
	Setting string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing configuration: %s", e.Setting)
}

const narrativeWordLimit = 350

type NarrativeConfig struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

type NarrativeClient struct {
	cfg    NarrativeConfig
	client *http.Client
}

func NewNarrativeClient(cfg NarrativeConfig) *NarrativeClient {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 900
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &NarrativeClient{
		cfg:    cfg,
		client: newHTTPClient(timeout),
	}
}

// NarrativeInput carries the facts the narrative may draw on.
type NarrativeInput struct {
	Destination  string
	CountryLevel bool
	Country      *models.CountryRiskRecord
	Weather      *models.WeatherSnapshot
	Summary      *string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices" validate:"min=1"`
}

func (n *NarrativeClient) Generate(ctx context.Context, in NarrativeInput) (string, error) {
	if strings.TrimSpace(n.cfg.APIKey) == "" {
		return "", &ConfigError{Setting: "GENAI_API_KEY"}
	}

	start := time.Now()
	text, err := n.complete(ctx, in)
	metrics.ObserveConnector("narrative", start, err)
	return text, err
}

func (n *NarrativeClient) complete(ctx context.Context, in NarrativeInput) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: n.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(in.CountryLevel)},
			{Role: "user", Content: BuildFacts(in)},
		},
		MaxTokens:   n.cfg.MaxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNarrativeFailed, err)
	}

	endpoint := strings.TrimRight(n.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNarrativeFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.cfg.APIKey)

	resp, err := n.client.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return "", fmt.Errorf("%w: %v", ErrNarrativeTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", ErrNarrativeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrNarrativeFailed, resp.StatusCode)
	}

	var data chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		if isTimeout(ctx, err) {
			return "", fmt.Errorf("%w: %v", ErrNarrativeTimeout, err)
		}
		return "", fmt.Errorf("%w: decode error: %v", ErrNarrativeFailed, err)
	}
	if err := validate.Struct(&data); err != nil {
		return "", fmt.Errorf("%w: no choices returned", ErrNarrativeFailed)
	}

	text := strings.TrimSpace(data.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", ErrNarrativeFailed)
	}
	return text, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func systemPrompt(countryLevel bool) string {
	parts := []string{
		"You are a travel writer preparing a short destination brief.",
		"Use ONLY the facts provided by the user message. If a fact is missing, leave it out.",
		"",
		"Structure the brief with these sections, each introduced by a plain heading line:",
		"- Introduction",
		"- Attractions",
		"- Weather and climate",
	}
	if countryLevel {
		parts = append(parts, "- Safety and risk")
	}
	parts = append(parts,
		"",
		"Rules:",
		fmt.Sprintf("- Stay under %d words in total.", narrativeWordLimit),
		"- Do not quote numeric risk scores, indices or rankings. Describe risk in words only.",
		"- Do not use bold or any other markdown emphasis.",
		"- Write in a friendly, factual tone.",
	)
	if !countryLevel {
		parts = append(parts, "- This is a city brief: do not include a safety or risk section.")
	}
	return strings.Join(parts, "\n")
}

// BuildFacts serializes what is known about the destination for the model.
// Hazard scores are reduced to qualitative labels.
func BuildFacts(in NarrativeInput) string {
	parts := []string{fmt.Sprintf("Destination: %s", in.Destination)}

	if c := in.Country; c != nil {
		parts = append(parts, fmt.Sprintf("Country: %s", c.Country))
		if in.CountryLevel {
			if c.RiskClass != "" {
				parts = append(parts, fmt.Sprintf("Overall risk class: %s", c.RiskClass))
			}
			parts = append(parts, "Hazard levels:")
			for _, h := range c.Hazards.Named() {
				parts = append(parts, fmt.Sprintf("- %s: %s", h.Name, HazardLabel(h.Score)))
			}
		}
		if c.FunFact != "" {
			parts = append(parts, fmt.Sprintf("Fun fact: %s", c.FunFact))
		}
	}

	if w := in.Weather; w != nil {
		parts = append(parts, fmt.Sprintf("Current weather: %.0f°C, feels like %.0f°C, wind %.0f km/h",
			w.Current.Temperature, w.Current.ApparentTemperature, w.Current.WindSpeed))
		parts = append(parts, fmt.Sprintf("Next 24 hours: high %.0f°C, low %.0f°C, %.1f mm precipitation",
			w.Last24h.MaxTemperature, w.Last24h.MinTemperature, w.Last24h.TotalPrecipitation))
		if len(w.Alerts) > 0 {
			parts = append(parts, "Upcoming weather alerts:")
			for _, day := range w.Alerts {
				for _, a := range day.Alerts {
					parts = append(parts, fmt.Sprintf("- %s: %s", day.Date, a.Message))
				}
			}
		}
	}

	if in.Summary != nil {
		parts = append(parts, "Encyclopedia summary:", *in.Summary)
	}

	return strings.Join(parts, "\n")
}

// HazardLabel maps a 0-10 hazard score to low, medium or high.
func HazardLabel(score float64) string {
	switch {
	case score >= 6.5:
		return "high"
	case score >= 3.5:
		return "medium"
	default:
		return "low"
	}
}
