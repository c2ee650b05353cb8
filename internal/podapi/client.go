// Package podapi is the request/response client for the pod-management REST
// API: pod CRUD, historical logs and file transfer.
package podapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"podctl/internal/podview"
	"podctl/pkg/logging"

	"github.com/hashicorp/go-retryablehttp"
)

// Config configures a Client.
type Config struct {
	// BaseURL is the backend root, e.g. "http://localhost:5260".
	BaseURL  string
	Timeout  time.Duration
	RetryMax int

	// HTTPClient overrides the retrying client built from the fields above.
	HTTPClient *retryablehttp.Client
}

// Client talks to {BaseURL}/api/pods.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
}

// New validates cfg and returns a Client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("podapi: base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("podapi: invalid base URL %q: %w", cfg.BaseURL, err)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = retryablehttp.NewClient()
		hc.RetryMax = cfg.RetryMax
		hc.Logger = logging.NewLeveledLogger("PodAPI")
		if cfg.Timeout > 0 {
			hc.HTTPClient.Timeout = cfg.Timeout
		}
	}
	// hand the last response back so backend error messages survive retries
	hc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    hc,
	}, nil
}

func podPath(name string, rest ...string) string {
	p := "/api/pods/" + url.PathEscape(name)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}

// ListPods returns every pod.
func (c *Client) ListPods(ctx context.Context) ([]*podview.Pod, error) {
	var pods []*podview.Pod
	if err := c.doJSON(ctx, http.MethodGet, "/api/pods", nil, nil, &pods); err != nil {
		return nil, err
	}
	out := pods[:0]
	for _, p := range pods {
		if p == nil || p.Name == "" {
			logging.Debug("PodAPI", "skipping unnamed pod record")
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// GetPod returns one pod.
func (c *Client) GetPod(ctx context.Context, name string) (*podview.Pod, error) {
	var pod podview.Pod
	if err := c.doJSON(ctx, http.MethodGet, podPath(name), nil, nil, &pod); err != nil {
		return nil, err
	}
	return &pod, nil
}

// CreatePod creates a pod and returns the backend's record.
func (c *Client) CreatePod(ctx context.Context, req CreatePodRequest) (*podview.Pod, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("podapi: pod name is required")
	}
	var pod podview.Pod
	if err := c.doJSON(ctx, http.MethodPost, "/api/pods", nil, req, &pod); err != nil {
		return nil, err
	}
	logging.Info("PodAPI", "created pod %s (%s)", pod.Name, req.Image)
	return &pod, nil
}

// UpdatePod changes the image or port of a pod.
func (c *Client) UpdatePod(ctx context.Context, name string, req UpdatePodRequest) (*podview.Pod, error) {
	var pod podview.Pod
	if err := c.doJSON(ctx, http.MethodPut, podPath(name), nil, req, &pod); err != nil {
		return nil, err
	}
	return &pod, nil
}

// DeletePod removes a pod.
func (c *Client) DeletePod(ctx context.Context, name string) error {
	if err := c.doJSON(ctx, http.MethodDelete, podPath(name), nil, nil, nil); err != nil {
		return err
	}
	logging.Info("PodAPI", "deleted pod %s", name)
	return nil
}

// GetPodLogs fetches the pod's log history. Blank lines are dropped.
func (c *Client) GetPodLogs(ctx context.Context, name string) ([]string, error) {
	body, err := c.do(ctx, http.MethodGet, podPath(name, "logs"), nil, nil, "")
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, line := range strings.Split(string(body), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimRight(line, "\r"))
		}
	}
	return lines, nil
}

// ListFiles lists dir inside the pod.
func (c *Client) ListFiles(ctx context.Context, name, dir string) ([]FileInfo, error) {
	var files []FileInfo
	q := url.Values{"path": {dir}}
	if err := c.doJSON(ctx, http.MethodGet, podPath(name, "files"), q, nil, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// UploadFile sends the local file at localPath into dir inside the pod.
// progress, when set, is called as the body is written.
func (c *Client) UploadFile(ctx context.Context, name, localPath, dir string, progress Progress) (*UploadResponse, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("podapi: open %s: %w", localPath, err)
	}
	defer f.Close()
	return c.Upload(ctx, name, filepath.Base(localPath), f, dir, progress)
}

// Upload sends content as fileName into dir inside the pod.
func (c *Client) Upload(ctx context.Context, name, fileName string, content io.Reader, dir string, progress Progress) (*UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("podapi: build upload: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("podapi: read upload content: %w", err)
	}
	if err := mw.WriteField("path", dir); err != nil {
		return nil, fmt.Errorf("podapi: build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("podapi: build upload: %w", err)
	}

	data := buf.Bytes()
	total := int64(len(data))
	body := retryablehttp.ReaderFunc(func() (io.Reader, error) {
		return &progressReader{r: bytes.NewReader(data), total: total, fn: progress}, nil
	})

	path := podPath(name, "files", "upload")
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("podapi: failed to create request: %w", err)
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", mw.FormDataContentType())

	respBody, status, err := c.send(req)
	if err != nil {
		return nil, fmt.Errorf("podapi: request to POST %s failed: %w", path, err)
	}

	var out UploadResponse
	if jsonErr := json.Unmarshal(respBody, &out); jsonErr != nil || status < 200 || status >= 300 {
		if status >= 200 && status < 300 {
			return nil, fmt.Errorf("podapi: failed to parse upload response: %w", jsonErr)
		}
		return nil, newError(status, http.MethodPost, path, respBody)
	}
	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = "upload failed"
		}
		return &out, &Error{StatusCode: status, Method: http.MethodPost, Path: path, Message: msg}
	}
	return &out, nil
}

// DownloadFile streams the file at path inside the pod into w.
func (c *Client) DownloadFile(ctx context.Context, name, path string, w io.Writer) (int64, error) {
	reqPath := podPath(name, "files", "download")
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+reqPath+"?"+url.Values{"path": {path}}.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("podapi: failed to create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("podapi: request to GET %s failed: %w", reqPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return 0, newError(resp.StatusCode, http.MethodGet, reqPath, body)
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("podapi: download %s: %w", path, err)
	}
	return n, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body []byte
	contentType := ""
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("podapi: failed to encode request body: %w", err)
		}
		body = encoded
		contentType = "application/json"
	}

	respBody, err := c.do(ctx, method, path, query, body, contentType)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("podapi: failed to parse %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte, contentType string) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var reqBody any
	if body != nil {
		reqBody = body
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, requestURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("podapi: failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	respBody, status, err := c.send(req)
	if err != nil {
		return nil, fmt.Errorf("podapi: request to %s %s failed: %w", method, path, err)
	}
	if status < 200 || status >= 300 {
		return nil, newError(status, method, path, respBody)
	}
	return respBody, nil
}

func (c *Client) send(req *retryablehttp.Request) ([]byte, int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

type progressReader struct {
	r     io.Reader
	sent  int64
	total int64
	fn    Progress
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.fn != nil {
			p.fn(p.sent, p.total)
		}
	}
	return n, err
}
