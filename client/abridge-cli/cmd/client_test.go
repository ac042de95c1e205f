package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSummarizeWithURLFetchesFirst(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer token on %s", r.URL.Path)
		}
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		switch r.URL.Path {
		case "/fetch-url-content/":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"content": "page body", "source_url": in["url"], "success": true})
		case "/summarize/":
			if in["text"] != "page body" || in["summary_type"] != "short" {
				t.Errorf("unexpected summarize payload %v", in)
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"summary": "tl;dr", "characters": 5, "summary_type": "short", "success": true})
		}
	}))
	defer srv.Close()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"summarize", "--server", srv.URL, "--token", "tok", "--type", "short", "--url", "https://example.com"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if strings.Join(paths, ",") != "/fetch-url-content/,/summarize/" {
		t.Errorf("call order = %v", paths)
	}
	if !strings.Contains(out.String(), "tl;dr") {
		t.Errorf("output = %q", out.String())
	}
}

func TestAPIErrorIsDecoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Content too short","code":"content_too_short","solutions":["Provide more text"]}`))
	}))
	defer srv.Close()

	_, err := (&apiClient{baseURL: srv.URL}).summarize("short", "short", "")
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *apiError", err)
	}
	if apiErr.Code != "content_too_short" || apiErr.Status != http.StatusBadRequest {
		t.Errorf("unexpected error %+v", apiErr)
	}
	if !strings.Contains(err.Error(), "Provide more text") {
		t.Errorf("solutions missing from %q", err.Error())
	}
}
