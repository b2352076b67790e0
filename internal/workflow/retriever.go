package workflow

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"path"
	"time"
)

const (
	downloadConnectTimeout = 30 * time.Second
	downloadTotalTimeout   = 10 * time.Minute
)

// FileData is one downloaded artifact.
type FileData struct {
	Name        string
	Content     []byte
	ContentType string
}

// Retriever downloads generated artifacts. Connect timeout is bounded while
// the overall timeout is long, since generated documents can be large.
type Retriever struct {
	httpClient *http.Client
}

func NewRetriever() *Retriever {
	return &Retriever{
		httpClient: &http.Client{
			Timeout: downloadTotalTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: downloadConnectTimeout}).DialContext,
			},
		},
	}
}

// Download fetches the artifact behind fileURL. A non-200 response is a hard
// failure.
func (r *Retriever) Download(ctx context.Context, fileURL string) (*FileData, error) {
	log.Printf("Retriever: downloading artifact from %s", fileURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download artifact: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download artifact: HTTP %d", resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read artifact body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	name := FileNameFromURL(fileURL)
	log.Printf("Retriever: downloaded %s (%d bytes, %s)", name, len(content), contentType)

	return &FileData{Name: name, Content: content, ContentType: contentType}, nil
}

// FileNameFromURL derives a file name from the last path segment, query
// stripped. When no usable segment exists a synthetic timestamped name is
// substituted; this never fails.
func FileNameFromURL(fileURL string) string {
	parsed, err := url.Parse(fileURL)
	if err == nil {
		name := path.Base(parsed.Path)
		if name != "" && name != "." && name != "/" {
			return name
		}
	}
	return fmt.Sprintf("declaration_file_%d", time.Now().UnixMilli())
}
