package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// apiError 是服务端返回的错误响应。
type apiError struct {
	Status    int      `json:"-"`
	Message   string   `json:"error"`
	Code      string   `json:"code"`
	Solutions []string `json:"solutions"`
}

func (e *apiError) Error() string {
	msg := fmt.Sprintf("%s (%s, HTTP %d)", e.Message, e.Code, e.Status)
	if len(e.Solutions) > 0 {
		msg += "\n  - " + strings.Join(e.Solutions, "\n  - ")
	}
	return msg
}

type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func (c *apiClient) do(method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, strings.TrimRight(c.baseURL, "/")+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	hc := c.http
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &apiError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type summarizeResult struct {
	Summary     string `json:"summary"`
	Characters  int    `json:"characters"`
	SummaryType string `json:"summary_type"`
}

type fetchResult struct {
	Content   string `json:"content"`
	SourceURL string `json:"source_url"`
}

func (c *apiClient) register(username, email, password string) error {
	return c.do(http.MethodPost, "/register/", map[string]string{
		"username": username, "email": email, "password": password,
	}, nil)
}

func (c *apiClient) login(username, password string) (*tokenPair, error) {
	var pair tokenPair
	err := c.do(http.MethodPost, "/login/", map[string]string{"username": username, "password": password}, &pair)
	return &pair, err
}

func (c *apiClient) fetch(url string) (*fetchResult, error) {
	var res fetchResult
	err := c.do(http.MethodPost, "/fetch-url-content/", map[string]string{"url": url}, &res)
	return &res, err
}

func (c *apiClient) summarize(text, summaryType, sourceURL string) (*summarizeResult, error) {
	var res summarizeResult
	err := c.do(http.MethodPost, "/summarize/", map[string]string{
		"text": text, "summary_type": summaryType, "source_url": sourceURL,
	}, &res)
	return &res, err
}
