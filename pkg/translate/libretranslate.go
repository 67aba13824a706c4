// Package translate adapts external translation and language detection
// services to the pipeline's Detector and Translator contracts.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"deepsight-be/pkg/rag/language"
)

// LibreTranslate is a client for a LibreTranslate server. Successful results
// are memoised in process since the same questions and answers repeat often.
type LibreTranslate struct {
	baseURL string
	apiKey  string
	client  *http.Client
	cache   *cache.Cache
}

var (
	_ language.Translator = (*LibreTranslate)(nil)
	_ language.Detector   = (*LibreTranslate)(nil)
)

func NewLibreTranslate(baseURL, apiKey string, timeout, cacheTTL time.Duration) *LibreTranslate {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &LibreTranslate{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		cache:   cache.New(cacheTTL, 10*time.Minute),
	}
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error,omitempty"`
}

type detectRequest struct {
	Q      string `json:"q"`
	APIKey string `json:"api_key,omitempty"`
}

type detection struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

func (l *LibreTranslate) Translate(ctx context.Context, text, from, to string) (string, error) {
	key := "t|" + from + "|" + to + "|" + text
	if v, ok := l.cache.Get(key); ok {
		return v.(string), nil
	}

	var out translateResponse
	err := l.post(ctx, "/translate", translateRequest{
		Q:      text,
		Source: from,
		Target: to,
		Format: "text",
		APIKey: l.apiKey,
	}, &out)
	if err != nil {
		return "", err
	}
	if out.Error != "" {
		return "", fmt.Errorf("libretranslate: %s", out.Error)
	}

	l.cache.SetDefault(key, out.TranslatedText)
	return out.TranslatedText, nil
}

func (l *LibreTranslate) Detect(ctx context.Context, text string) (string, error) {
	key := "d|" + text
	if v, ok := l.cache.Get(key); ok {
		return v.(string), nil
	}

	var out []detection
	if err := l.post(ctx, "/detect", detectRequest{Q: text, APIKey: l.apiKey}, &out); err != nil {
		return "", err
	}
	if len(out) == 0 || out[0].Language == "" {
		return language.Unknown, nil
	}

	tag := language.Canonical(out[0].Language)
	l.cache.SetDefault(key, tag)
	return tag, nil
}

func (l *LibreTranslate) post(ctx context.Context, path string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("libretranslate request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("libretranslate error: status %d, body: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
