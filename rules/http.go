package rules

import (
	"context"
	"fmt"
	"io"
	"net/http"
	nu "net/url"
	"strings"
	"time"
)

var (
	createClient = getNetClient
)

type httpClient interface {
	Post(ctx context.Context, url, contentType string, body io.Reader) (*http.Response, error)
}

type wrappedHTTPClient struct {
	*http.Client
}

func (c *wrappedHTTPClient) Post(ctx context.Context, url, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return c.Client.Do(req.WithContext(ctx))
}

func getNetClient(duration time.Duration) httpClient {
	return &wrappedHTTPClient{
		Client: &http.Client{
			Timeout: duration,
		},
	}
}

// IsValidURL reports whether a driver string looks like a remote driver.
func IsValidURL(url string) bool {
	if len(url) == 0 {
		return false
	}

	parsed, err := nu.Parse(url)
	if err != nil {
		return false
	}

	if len(parsed.Scheme) == 0 || len(parsed.Host) == 0 {
		return false
	}

	return true
}

func cleanURL(url string) string {
	if !strings.HasSuffix(url, "/") {
		return fmt.Sprintf("%s/", url)
	}
	return url
}

func getURL(url, path string) string {
	u := cleanURL(url)
	return fmt.Sprintf("%s%s", u, path)
}
