package zanata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rios0rios0/gerritops/internal/domain/repositories"
)

// ZanataRepository implements repositories.TranslationRepository against
// the Zanata REST API, authenticating with the X-Auth header pair.
type ZanataRepository struct {
	url      string
	username string
	apiKey   string
	client   *http.Client
}

func NewZanataRepository(cfg repositories.TranslationConfig) (repositories.TranslationRepository, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("translation platform url is required")
	}
	return &ZanataRepository{
		url:      strings.TrimRight(cfg.URL, "/"),
		username: cfg.Username,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (it *ZanataRepository) do(ctx context.Context, method, path string, body any) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, it.url+path, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Auth-User", it.username)
	req.Header.Set("X-Auth-Token", it.apiKey)

	resp, err := it.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("translation request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

func (it *ZanataRepository) exists(ctx context.Context, path string) (bool, error) {
	status, err := it.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return false, err
	}
	switch {
	case status == http.StatusOK:
		return true, nil
	case status == http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected status %d for %s", status, path)
	}
}

func (it *ZanataRepository) put(ctx context.Context, path string, body any) error {
	status, err := it.do(ctx, http.MethodPut, path, body)
	if err != nil {
		return err
	}
	if status >= http.StatusBadRequest {
		return fmt.Errorf("unexpected status %d for %s", status, path)
	}
	return nil
}

func (it *ZanataRepository) ProjectExists(ctx context.Context, id string) (bool, error) {
	return it.exists(ctx, "/rest/projects/p/"+id)
}

func (it *ZanataRepository) IterationExists(ctx context.Context, id, iteration string) (bool, error) {
	return it.exists(ctx, fmt.Sprintf("/rest/projects/p/%s/iterations/i/%s", id, iteration))
}

func (it *ZanataRepository) CreateProject(ctx context.Context, id string) error {
	return it.put(ctx, "/rest/projects/p/"+id, map[string]string{
		"id":          id,
		"name":        id,
		"defaultType": "Gettext",
		"status":      "ACTIVE",
	})
}

func (it *ZanataRepository) CreateIteration(ctx context.Context, id, iteration string) error {
	return it.put(ctx, fmt.Sprintf("/rest/projects/p/%s/iterations/i/%s", id, iteration),
		map[string]string{
			"id":     iteration,
			"status": "ACTIVE",
		})
}
