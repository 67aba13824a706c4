package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"deepsight-be/internal/dto"
	"deepsight-be/internal/pkg/serverutils"
)

type Client struct {
	baseURL string
	device  string
	http    *http.Client
}

func NewClient(baseURL, device string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		device:  device,
		http:    &http.Client{Timeout: 180 * time.Second},
	}
}

// Answer is a query reply. Message is only set by error envelopes.
type Answer struct {
	dto.QueryResponse
	Message string `json:"message"`
}

// Ask posts one question. Any status with a JSON body is decoded.
func (c *Client) Ask(question, origin, destination string) (*Answer, int, error) {
	body, _ := json.Marshal(dto.QueryRequest{Query: question, Origin: origin, Destination: destination})
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/query", bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(serverutils.DeviceHeader, c.device)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var out Answer
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	return &out, resp.StatusCode, nil
}

func (c *Client) Recent(limit int) (*dto.RecentSearchesResponse, error) {
	resp, err := c.http.Get(fmt.Sprintf("%s/api/search-logs/recent?limit=%d", c.baseURL, limit))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %s", resp.Status)
	}

	var envelope struct {
		Data dto.RecentSearchesResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}
