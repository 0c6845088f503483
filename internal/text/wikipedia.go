package text

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/strrl/typerace/pkg/models"
)

// DefaultWikipediaEndpoint is the English Wikipedia REST API.
const DefaultWikipediaEndpoint = "https://en.wikipedia.org/api/rest_v1"

// WikipediaProvider fetches the summary of a random Wikipedia article.
type WikipediaProvider struct {
	endpoint string
	maxLen   int
	client   *http.Client
}

// NewWikipediaProvider creates a provider against endpoint, or the default
// endpoint when it is empty.
func NewWikipediaProvider(endpoint string, maxLen int) *WikipediaProvider {
	if endpoint == "" {
		endpoint = DefaultWikipediaEndpoint
	}
	return &WikipediaProvider{
		endpoint: strings.TrimRight(endpoint, "/"),
		maxLen:   maxLen,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type summaryResponse struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
}

// Fetch requests a random page summary and normalizes its extract.
func (w *WikipediaProvider) Fetch(ctx context.Context) (models.Text, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.endpoint+"/page/random/summary", nil)
	if err != nil {
		return models.Text{}, fmt.Errorf("failed to build wikipedia request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "typerace (terminal typing game)")

	resp, err := w.client.Do(req)
	if err != nil {
		return models.Text{}, fmt.Errorf("failed to fetch random page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Text{}, fmt.Errorf("failed to fetch random page: unexpected status %s", resp.Status)
	}

	var summary summaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return models.Text{}, fmt.Errorf("failed to decode page summary: %w", err)
	}
	if summary.Title == "" {
		return models.Text{}, fmt.Errorf("random page has no title")
	}

	log.Debug().Str("title", summary.Title).Int("extract", len(summary.Extract)).Msg("fetched random page")
	return models.Text{
		Source: fmt.Sprintf("Wikipedia (%s)", summary.Title),
		Body:   Normalize(summary.Extract, w.maxLen),
	}, nil
}
