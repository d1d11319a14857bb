package e2e

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TestContext carries HTTP state across steps within one scenario: the last
// response, parsed body, and values captured from earlier responses.
type TestContext struct {
	BaseURL    string
	AdminToken string

	client       *http.Client
	lastStatus   int
	lastBody     []byte
	lastResponse map[string]interface{}
	captured     map[string]string
}

func NewTestContext(baseURL, adminToken string) *TestContext {
	return &TestContext{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		AdminToken: adminToken,
		client:     &http.Client{Timeout: 10 * time.Second},
		captured:   map[string]string{},
	}
}

// Reset clears per-scenario state. Call it from a Before hook.
func (tc *TestContext) Reset() {
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.lastResponse = nil
	tc.captured = map[string]string{}
}

func (tc *TestContext) POST(path string, body interface{}) error {
	return tc.do(http.MethodPost, path, body)
}

func (tc *TestContext) GET(path string) error {
	return tc.do(http.MethodGet, path, nil)
}

func (tc *TestContext) DELETE(path string) error {
	return tc.do(http.MethodDelete, path, nil)
}

func (tc *TestContext) do(method, path string, body interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		// Bodies may reference captured values the same way paths do.
		reader = strings.NewReader(tc.expand(string(payload)))
	}

	req, err := http.NewRequest(method, tc.BaseURL+tc.expand(path), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc.AdminToken != "" {
		req.Header.Set("Authorization", "Bearer "+tc.AdminToken)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	tc.lastResponse = nil
	if len(tc.lastBody) > 0 {
		var parsed map[string]interface{}
		if json.Unmarshal(tc.lastBody, &parsed) == nil {
			tc.lastResponse = parsed
		}
	}
	return nil
}

// expand substitutes {name} placeholders with previously captured values.
func (tc *TestContext) expand(path string) string {
	for name, value := range tc.captured {
		path = strings.ReplaceAll(path, "{"+name+"}", value)
	}
	return path
}

// SetVar stores a literal value for {name} expansion in later request paths.
func (tc *TestContext) SetVar(name, value string) {
	tc.captured[name] = value
}

// Capture stores a response field under a name for use in later request paths.
func (tc *TestContext) Capture(name, field string) error {
	value, err := tc.GetResponseField(field)
	if err != nil {
		return err
	}
	tc.captured[name] = fmt.Sprintf("%v", value)
	return nil
}

func (tc *TestContext) LastStatus() int {
	return tc.lastStatus
}

// GetResponseField resolves a dot path ("assignments.0.status") against the
// last JSON response.
func (tc *TestContext) GetResponseField(field string) (interface{}, error) {
	if tc.lastResponse == nil {
		return nil, fmt.Errorf("no JSON response to inspect")
	}
	var current interface{} = tc.lastResponse
	for _, part := range strings.Split(field, ".") {
		switch node := current.(type) {
		case map[string]interface{}:
			value, ok := node[part]
			if !ok {
				return nil, fmt.Errorf("response has no field %q (at %q)", field, part)
			}
			current = value
		case []interface{}:
			var index int
			if _, err := fmt.Sscanf(part, "%d", &index); err != nil {
				return nil, fmt.Errorf("expected array index at %q in %q", part, field)
			}
			if index < 0 || index >= len(node) {
				return nil, fmt.Errorf("index %d out of range at %q", index, field)
			}
			current = node[index]
		default:
			return nil, fmt.Errorf("cannot descend into %q at %q", field, part)
		}
	}
	return current, nil
}

// ResponseContains reports whether the last response has the field at all.
func (tc *TestContext) ResponseContains(field string) bool {
	_, err := tc.GetResponseField(field)
	return err == nil
}
