package mo

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/iota-uz/engagement-updater/modules/engagement/domain/details"
)

// ModelClient submits write payloads to the MO service API. It is only used
// on the live (non-dry-run) path.
type ModelClient struct {
	baseURL string
	client  *http.Client
}

func NewModelClient(moURL string, httpClient *http.Client) *ModelClient {
	return &ModelClient{
		baseURL: strings.TrimRight(moURL, "/"),
		client:  httpClient,
	}
}

func (c *ModelClient) CreateAssociation(ctx context.Context, association details.Association) error {
	return c.post(ctx, "/service/details/create", []details.Association{association})
}

func (c *ModelClient) EditEngagement(ctx context.Context, engagement details.Engagement) error {
	edit := engagementEdit{
		Type: engagement.Type,
		UUID: engagement.UUID.String(),
		Data: engagement,
	}
	return c.post(ctx, "/service/details/edit", []engagementEdit{edit})
}

type engagementEdit struct {
	Type string             `json:"type"`
	UUID string             `json:"uuid"`
	Data details.Engagement `json:"data"`
}

func (c *ModelClient) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshalling payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "POST %s", path)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return errors.Errorf("POST %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

// Healthcheck verifies the service API connection by listing organisations.
func (c *ModelClient) Healthcheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/service/o/", nil)
	if err != nil {
		return errors.Wrap(err, "building request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "GET /service/o/")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("GET /service/o/: status %d", resp.StatusCode)
	}

	var orgs []struct {
		UUID string `json:"uuid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&orgs); err != nil {
		return errors.Wrap(err, "decoding organisation list")
	}
	if len(orgs) == 0 {
		return errors.New("no organisations returned")
	}
	return nil
}
