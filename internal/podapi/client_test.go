package podapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	hc := retryablehttp.NewClient()
	hc.RetryMax = 0
	hc.Logger = nil
	c, err := New(Config{BaseURL: srv.URL + "/", HTTPClient: hc})
	require.NoError(t, err)
	return c
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	c, err := New(Config{BaseURL: "http://localhost:5260", RetryMax: 3, Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, 3, c.http.RetryMax)
	assert.Equal(t, time.Second, c.http.HTTPClient.Timeout)
}

func TestListAndGetPods(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/pods", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"name":"web-1","namespace":"default","status":"Running","image":"ubuntu:22.04","podIP":"10.0.0.1","ports":{"jupyter":8888},"nodePort":30001},{"name":"web-2","status":"Pending"}]`)
	})
	mux.HandleFunc("GET /api/pods/{name}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("name") != "web-1" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"Pod web-9 not found"}`)
			return
		}
		_, _ = io.WriteString(w, `{"name":"web-1","status":"Running"}`)
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	pods, err := c.ListPods(ctx)
	require.NoError(t, err)
	require.Len(t, pods, 2)
	assert.Equal(t, "10.0.0.1", pods[0].Address)
	assert.Equal(t, 8888, pods[0].Ports["jupyter"])
	require.NotNil(t, pods[0].NodePort)
	assert.Equal(t, 30001, *pods[0].NodePort)
	assert.Nil(t, pods[1].NodePort)

	pod, err := c.GetPod(ctx, "web-1")
	require.NoError(t, err)
	assert.Equal(t, "Running", pod.Status)

	_, err = c.GetPod(ctx, "web-9")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "Pod web-9 not found")
}

func TestListPods_SkipsNullRecords(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/pods", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[null,{"name":"web-1","status":"Running"},{"status":"Pending"}]`)
	})
	c := newTestClient(t, mux)

	pods, err := c.ListPods(context.Background())
	require.NoError(t, err)
	require.Len(t, pods, 1)
	assert.Equal(t, "web-1", pods[0].Name)
}

func TestCreateUpdateDelete(t *testing.T) {
	var created CreatePodRequest
	var updated UpdatePodRequest
	var deleted string

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/pods", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&created))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"name": created.Name, "image": created.Image, "status": "Pending"})
	})
	mux.HandleFunc("PUT /api/pods/{name}", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&updated))
		_ = json.NewEncoder(w).Encode(map[string]any{"name": r.PathValue("name"), "image": updated.Image})
	})
	mux.HandleFunc("DELETE /api/pods/{name}", func(w http.ResponseWriter, r *http.Request) {
		deleted = r.PathValue("name")
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	tmpl, err := LookupTemplate("jupyter-minimal")
	require.NoError(t, err)
	pod, err := c.CreatePod(ctx, tmpl.Request("nb-1"))
	require.NoError(t, err)
	assert.Equal(t, CreatePodRequest{Name: "nb-1", Image: "jupyter/minimal-notebook:latest", JupyterPort: 8888}, created)
	assert.Equal(t, "Pending", pod.Status)

	_, err = c.CreatePod(ctx, CreatePodRequest{Image: "x"})
	assert.Error(t, err)

	pod, err = c.UpdatePod(ctx, "nb-1", UpdatePodRequest{Image: "ubuntu:22.04", JupyterPort: 9999})
	require.NoError(t, err)
	assert.Equal(t, 9999, updated.JupyterPort)
	assert.Equal(t, "ubuntu:22.04", pod.Image)

	require.NoError(t, c.DeletePod(ctx, "nb-1"))
	assert.Equal(t, "nb-1", deleted)
}

func TestGetPodLogs_DropsBlankLines(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/pods/web-1/logs", r.URL.Path)
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "starting\r\n\n   \nlistening on :8888\n")
	}))

	lines, err := c.GetPodLogs(context.Background(), "web-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"starting", "listening on :8888"}, lines)
}

func TestServerErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"error field", `{"error":"image pull failed"}`, "image pull failed"},
		{"message field", `{"message":"quota exceeded"}`, "quota exceeded"},
		{"problem details", `{"title":"Bad Request","detail":"name is invalid"}`, "name is invalid"},
		{"plain text", "boom", "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = io.WriteString(w, tt.body)
			}))
			err := c.DeletePod(context.Background(), "x")
			require.Error(t, err)
			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Equal(t, tt.want, apiErr.Message)
		})
	}
}

func TestFiles(t *testing.T) {
	var uploadedName, uploadedDir, uploadedContent string

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/pods/{name}/files", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/home/", r.URL.Query().Get("path"))
		_, _ = io.WriteString(w, `[{"name":"notebooks","size":0,"isDirectory":true,"modifiedAt":null},{"name":"a.txt","size":2048,"isDirectory":false,"modifiedAt":"2024-05-01T10:00:00Z"}]`)
	})
	mux.HandleFunc("POST /api/pods/{name}/files/upload", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		uploadedName, uploadedDir, uploadedContent = hdr.Filename, r.FormValue("path"), string(data)
		_, _ = io.WriteString(w, `{"success":true,"filePath":"/home/data.csv"}`)
	})
	mux.HandleFunc("GET /api/pods/{name}/files/download", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("path") != "/home/a.txt" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"file not found"}`)
			return
		}
		_, _ = io.WriteString(w, "hello")
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	files, err := c.ListFiles(ctx, "web-1", "/home/")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.True(t, files[0].IsDirectory)
	assert.True(t, files[0].Modified().IsZero())
	assert.Equal(t, 2024, files[1].Modified().Year())

	local := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(local, []byte("a,b\n1,2\n"), 0o644))
	var last, total int64
	resp, err := c.UploadFile(ctx, "web-1", local, "/home/", func(sent, tot int64) { last, total = sent, tot })
	require.NoError(t, err)
	assert.Equal(t, "/home/data.csv", resp.FilePath)
	assert.Equal(t, "data.csv", uploadedName)
	assert.Equal(t, "/home/", uploadedDir)
	assert.Equal(t, "a,b\n1,2\n", uploadedContent)
	assert.Equal(t, total, last)
	assert.Equal(t, 100, Percent(last, total))

	var out bytes.Buffer
	n, err := c.DownloadFile(ctx, "web-1", "/home/a.txt", &out)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, "hello", out.String())

	_, err = c.DownloadFile(ctx, "web-1", "/nope", &out)
	assert.True(t, IsNotFound(err))
}

func TestUpload_RejectedByBackend(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":false,"error":"disk full"}`)
	}))
	resp, err := c.Upload(context.Background(), "web-1", "x.bin", strings.NewReader("xx"), "/", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.NotNil(t, resp)
	assert.False(t, resp.Success)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "512 B", FormatSize(512))
	assert.Equal(t, "1.5 KB", FormatSize(1536))
	assert.Equal(t, "10 MB", FormatSize(10*1024*1024))
	assert.Equal(t, "/home/a", JoinPath("/home", "a"))
	assert.Equal(t, "/home/a", JoinPath("/home/", "a"))
	assert.Equal(t, "/", ParentPath("/home/"))
	assert.Equal(t, "/home/", ParentPath("/home/notebooks/"))
	assert.Equal(t, "/", ParentPath("/"))
	assert.Equal(t, "a.txt", BaseName("/home/a.txt"))
	assert.Equal(t, 0, Percent(5, 0))
}

func TestTemplates(t *testing.T) {
	ts := Templates()
	require.Len(t, ts, 4)
	assert.Equal(t, "jupyter-minimal", ts[0].ID)

	_, err := LookupTemplate("windows")
	assert.Error(t, err)

	u, err := LookupTemplate(DefaultTemplate)
	require.NoError(t, err)
	assert.Equal(t, "ubuntu:22.04", u.Image)
}
