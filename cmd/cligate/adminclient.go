package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// adminClient calls a running cligate server's admin HTTP surface. The CLI
// subcommands never touch a provider.Registry/health.Tracker/jobmanager.Manager
// directly: they talk to whichever process is actually serving --listen, the
// same way an operator's curl would.
type adminClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func newAdminClient(baseURL, apiKey string) *adminClient {
	return &adminClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *adminClient) do(method, path string, out any) error {
	req, err := http.NewRequest(method, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("admin request failed: %s: %s", resp.Status, string(body))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

func (c *adminClient) get(path string, out any) error {
	return c.do(http.MethodGet, path, out)
}

func (c *adminClient) post(path string, out any) error {
	return c.do(http.MethodPost, path, out)
}
