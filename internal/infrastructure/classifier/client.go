package classifier

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"medray-api/config"

	"github.com/sirupsen/logrus"
)

// maxResponseBytes caps how much of a classifier reply is read.
const maxResponseBytes = 1 << 20

// StatusError is returned when the classifier answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("classifier returned status %d", e.StatusCode)
}

// Client talks to the chest X-ray classifier over HTTP.
type Client struct {
	url          string
	probeTimeout time.Duration
	timeout      time.Duration
	httpClient   *http.Client
}

func NewClient(cfg config.ClassifierConfig, log *logrus.Logger) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		log.Warnf("TLS verification disabled for classifier at %s", cfg.URL)
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	return &Client{
		url:          cfg.URL,
		probeTimeout: cfg.ProbeTimeout,
		timeout:      cfg.Timeout,
		httpClient:   &http.Client{Transport: transport},
	}
}

// Probe issues a GET against the classifier URL. It only checks reachability,
// any HTTP status counts as reachable.
func (c *Client) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("build probe request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("probe classifier: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	return nil
}

// Classify uploads the image as the multipart field "file" and returns the raw
// response body. Non-2xx replies come back as *StatusError.
func (c *Client) Classify(ctx context.Context, fileName string, image []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return nil, fmt.Errorf("build classify request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read classifier response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(payload)}
	}

	return payload, nil
}
