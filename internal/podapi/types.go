package podapi

import (
	"fmt"
	"strings"
	"time"
)

// CreatePodRequest is the body of a create call.
type CreatePodRequest struct {
	Name        string `json:"name"`
	Image       string `json:"image"`
	JupyterPort int    `json:"jupyterPort"`
}

// UpdatePodRequest is the body of an update call.
type UpdatePodRequest struct {
	Image       string `json:"image"`
	JupyterPort int    `json:"jupyterPort"`
}

// FileInfo is one entry of a pod directory listing.
type FileInfo struct {
	Name        string  `json:"name"`
	Size        int64   `json:"size"`
	IsDirectory bool    `json:"isDirectory"`
	ModifiedAt  *string `json:"modifiedAt"`
}

// Modified parses ModifiedAt, returning the zero time when absent or
// unparsable.
func (f FileInfo) Modified() time.Time {
	if f.ModifiedAt == nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, *f.ModifiedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// UploadResponse is the backend's answer to an upload.
type UploadResponse struct {
	Success  bool   `json:"success"`
	FilePath string `json:"filePath,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Progress reports bytes sent out of total.
type Progress func(sent, total int64)

// Percent converts a progress report into a whole percentage.
func Percent(sent, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(sent * 100 / total)
}

// FormatSize renders a byte count the way file listings show it.
func FormatSize(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	units := []string{"KB", "MB", "GB", "TB"}
	size := float64(n) / 1024
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	if size >= 10 {
		return fmt.Sprintf("%.0f %s", size, units[i])
	}
	return fmt.Sprintf("%.1f %s", size, units[i])
}

// JoinPath appends name to a directory path using forward slashes.
func JoinPath(dir, name string) string {
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	return dir + name
}

// ParentPath returns the directory above dir, never going past "/".
func ParentPath(dir string) string {
	trimmed := strings.TrimSuffix(dir, "/")
	i := strings.LastIndex(trimmed, "/")
	if i <= 0 {
		return "/"
	}
	return trimmed[:i+1]
}

// BaseName returns the last element of a slash-separated path.
func BaseName(p string) string {
	trimmed := strings.TrimSuffix(p, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
