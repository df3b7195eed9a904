// Package cards is the thin client for the external card-tracking service.
// The pipeline hands it a finished JobRecord; everything interesting happens
// on the other side of the wire.
package cards

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"applyflow-engine/internal/domain"
)

// Creator is what the pipeline depends on; swap in a fake for tests.
type Creator interface {
	CreateCard(ctx context.Context, rec domain.JobRecord) (cardRef string, err error)
}

type Client struct {
	baseURL string
	token   string
	hc      *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		hc:      &http.Client{Timeout: 15 * time.Second},
	}
}

type createCardRequest struct {
	IdempotencyKey string           `json:"idempotency_key"`
	Record         domain.JobRecord `json:"record"`
}

type createCardResponse struct {
	CardRef string `json:"card_ref"`
}

// CreateCard posts the record with a fresh idempotency key. The service
// dedupes on the key, so a retried request cannot create a second card.
func (c *Client) CreateCard(ctx context.Context, rec domain.JobRecord) (string, error) {
	payload := createCardRequest{
		IdempotencyKey: uuid.NewString(),
		Record:         rec,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("cards marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cards", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("cards request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("cards post: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return "", fmt.Errorf("cards status %d", res.StatusCode)
	}

	var out createCardResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("cards decode: %w", err)
	}
	return out.CardRef, nil
}
