package jobs

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/spigell/careerpath/internal/logger"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	maxLogLength    = 200
)

// StatusError is returned when the job board answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status: %s", e.Status)
}

// ErrInvalidBody is returned when the job board answers 200 with a non-JSON body.
var ErrInvalidBody = errors.New("job board returned invalid JSON")

func (c *Client) getJSON(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req = c.setHeaders(req)

	resp, err := c.request(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("job board returned bad status",
			zap.Int("status", resp.StatusCode),
			zap.String("body_preview", logger.TruncateForLog(string(data), maxLogLength)),
		)
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	if !json.Valid(data) {
		c.logger.Warn("job board returned invalid json",
			zap.String("body_preview", logger.TruncateForLog(string(data), maxLogLength)),
		)
		return nil, ErrInvalidBody
	}

	return data, nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)

	return req
}
