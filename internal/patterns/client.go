package patterns

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/upaura/music-app/internal/sequencer"
)

// Client talks to the pattern-service REST API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

var _ sequencer.Store = (*Client)(nil)

// NewClient creates a pattern-service client. token is sent as a Bearer
// credential when non-empty.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type listResp struct {
	Patterns []wirePattern `json:"patterns"`
}

type saveReq struct {
	Name     string `json:"name"`
	GridData string `json:"grid_data"`
	Tempo    int    `json:"tempo"`
}

type saveResp struct {
	Message string      `json:"message"`
	Pattern wirePattern `json:"pattern"`
}

type errorResp struct {
	Error string `json:"error"`
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// errorFrom extracts the service's error message from a failed response.
func errorFrom(resp *http.Response) error {
	var body errorResp
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("pattern service: %s (status %d)", body.Error, resp.StatusCode)
	}
	return fmt.Errorf("pattern service: unexpected status %d", resp.StatusCode)
}

// WaitForHealthy blocks until the pattern service responds to health checks.
func (c *Client) WaitForHealthy(ctx context.Context) error {
	log.Println("Waiting for pattern service to be ready...")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		resp, err := c.http.Get(c.baseURL + "/api/health")
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			log.Println("Pattern service is healthy")
			return nil
		}
		if resp != nil {
			resp.Body.Close()
		}

		log.Println("Pattern service not ready, retrying in 5s...")
		time.Sleep(5 * time.Second)
	}
}

// LoadAll fetches every saved pattern, newest first as the service orders
// them. A pattern whose grid data cannot be decoded fails the whole listing;
// persistence is lossless or it is an error.
func (c *Client) LoadAll(ctx context.Context) ([]sequencer.Pattern, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/patterns", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list patterns: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errorFrom(resp)
	}

	var body listResp
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	out := make([]sequencer.Pattern, 0, len(body.Patterns))
	for _, w := range body.Patterns {
		p, err := w.toPattern()
		if err != nil {
			return nil, fmt.Errorf("pattern %d: %w", w.ID, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// Save persists a pattern and returns it with the id and timestamp the
// service assigned.
func (c *Client) Save(ctx context.Context, p sequencer.Pattern) (sequencer.Pattern, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return sequencer.Pattern{}, &sequencer.ValidationError{Field: "name", Reason: "must not be empty"}
	}

	gridData, err := encodeGridData(p.Rows)
	if err != nil {
		return sequencer.Pattern{}, err
	}

	payload, err := json.Marshal(saveReq{Name: name, GridData: gridData, Tempo: p.Tempo})
	if err != nil {
		return sequencer.Pattern{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/patterns", bytes.NewReader(payload))
	if err != nil {
		return sequencer.Pattern{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return sequencer.Pattern{}, fmt.Errorf("save pattern: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return sequencer.Pattern{}, errorFrom(resp)
	}

	var body saveResp
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return sequencer.Pattern{}, fmt.Errorf("decode response: %w", err)
	}
	return body.Pattern.toPattern()
}

// Remove deletes a saved pattern by id.
func (c *Client) Remove(ctx context.Context, id int) error {
	url := fmt.Sprintf("%s/api/patterns/%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, "DELETE", url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("delete pattern: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return &sequencer.NotFoundError{ID: id}
	default:
		return errorFrom(resp)
	}
}
