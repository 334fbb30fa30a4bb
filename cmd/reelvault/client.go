package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client wraps HTTP calls to the reelvault server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new reelvault API client.
func NewClient(serverURL string) *Client {
	return &Client{
		baseURL: serverURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// apiError is the server's error body.
type apiError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *apiError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server error %d (%s): %s", e.Status, e.Code, e.Message)
}

func readError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	e := &apiError{Status: resp.StatusCode}
	if err := json.Unmarshal(body, e); err != nil || e.Message == "" {
		e.Code = ""
		e.Message = string(bytes.TrimSpace(body))
	}
	return e
}

func (c *Client) get(path string, result any) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return readError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

func (c *Client) post(path string, body any, result any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal error: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", reader)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
	default:
		return readError(resp)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

// API response types (mirror server types)

type QueueStatusResponse struct {
	QueueSize     int       `json:"queueSize"`
	Processing    bool      `json:"processing"`
	CurrentUpload *string   `json:"currentUpload"`
	NextCheck     time.Time `json:"nextCheck"`
}

type UploadResponse struct {
	Kind      string    `json:"kind"`
	ContentID string    `json:"contentId"`
	Status    string    `json:"status"`
	Error     *string   `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ListUploadsResponse struct {
	Items []UploadResponse `json:"items"`
	Total int              `json:"total"`
}

type ResubmitResponse struct {
	ContentID string `json:"contentId"`
	Queued    bool   `json:"queued"`
}

type MessageRef struct {
	ChatID    int64 `json:"chatId"`
	MessageID int   `json:"messageId"`
}

type MovieResponse struct {
	ContentID    string      `json:"contentId"`
	Title        string      `json:"title"`
	Year         int         `json:"year"`
	UploadStatus string      `json:"uploadStatus"`
	UploadError  *string     `json:"uploadError,omitempty"`
	Stored       *MessageRef `json:"stored,omitempty"`
}

type SeriesResponse struct {
	SeriesID string `json:"seriesId"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	Year     int    `json:"year"`
}

type EpisodeResponse struct {
	ContentID    string      `json:"contentId"`
	SeriesID     string      `json:"seriesId"`
	Season       int         `json:"season"`
	Episode      int         `json:"episode"`
	Title        string      `json:"title"`
	UploadStatus string      `json:"uploadStatus"`
	UploadError  *string     `json:"uploadError,omitempty"`
	Stored       *MessageRef `json:"stored,omitempty"`
	ShareLink    *string     `json:"shareLink,omitempty"`
}

type ResolveResponse struct {
	ID      string           `json:"id"`
	Variant string           `json:"variant"`
	Movie   *MovieResponse   `json:"movie,omitempty"`
	Episode *EpisodeResponse `json:"episode,omitempty"`
	Series  *SeriesResponse  `json:"series,omitempty"`
}

// Queue returns the upload queue status.
func (c *Client) Queue() (*QueueStatusResponse, error) {
	var resp QueueStatusResponse
	if err := c.get("/api/v1/queue", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Uploads lists upload states, optionally filtered by status.
func (c *Client) Uploads(status string) (*ListUploadsResponse, error) {
	path := "/api/v1/uploads"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var resp ListUploadsResponse
	if err := c.get(path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Enqueue re-submits a pending or failed upload.
func (c *Client) Enqueue(id string) (*ResubmitResponse, error) {
	var resp ResubmitResponse
	if err := c.post("/api/v1/uploads/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Resolve asks the server which entity id names. A not-found id yields a
// response with variant "not_found" and no error.
func (c *Client) Resolve(id string) (*ResolveResponse, error) {
	resp, err := c.httpClient.Get(c.baseURL + "/api/v1/resolve/" + url.PathEscape(id))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return nil, readError(resp)
	}
	var out ResolveResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
