// Package blob talks to the upload-target broker and the bucket it points at.
package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"sort"
	"strings"
	"time"

	"pdf-chat-be/internal/apperror"
	"pdf-chat-be/internal/constant"
)

// UploadTarget is a short-lived, pre-authorized POST destination.
type UploadTarget struct {
	URL    string            `json:"url"`
	Fields map[string]string `json:"fields"`
}

type Client struct {
	brokerURL  string
	httpClient *http.Client
}

func NewClient(brokerURL string, timeout time.Duration) *Client {
	return &Client{
		brokerURL: brokerURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Enabled reports whether a broker is configured.
func (c *Client) Enabled() bool {
	return c.brokerURL != ""
}

// RequestUploadTarget asks the broker for a destination for fileName.
func (c *Client) RequestUploadTarget(ctx context.Context, fileName, fileType string) (*UploadTarget, error) {
	brokerFailed := func(err error) error {
		return apperror.Wrap(apperror.KindTransport, apperror.CodeBrokerFailed,
			fmt.Sprintf(constant.StatusMessageBrokerFailed, fileName), err)
	}

	u, err := url.Parse(c.brokerURL)
	if err != nil {
		return nil, brokerFailed(fmt.Errorf("parse broker url: %w", err))
	}
	q := u.Query()
	q.Set("fileName", fileName)
	q.Set("fileType", fileType)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, brokerFailed(fmt.Errorf("create request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, brokerFailed(fmt.Errorf("broker request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, brokerFailed(fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, brokerFailed(fmt.Errorf("broker error: status %d, body: %s", resp.StatusCode, string(body)))
	}

	var target UploadTarget
	if err := json.Unmarshal(body, &target); err != nil {
		return nil, brokerFailed(fmt.Errorf("unmarshal response: %w", err))
	}
	if target.URL == "" {
		return nil, brokerFailed(fmt.Errorf("broker returned no url"))
	}

	return &target, nil
}

// Transfer posts the target's fields followed by the file under "file".
// Any non-2xx answer fails with the status code and body verbatim. There is
// exactly one attempt.
func (c *Client) Transfer(ctx context.Context, target *UploadTarget, fileName, contentType string, data []byte) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	// Field order is stable; the file part must come last for S3
	keys := make([]string, 0, len(target.Fields))
	for k := range target.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := writer.WriteField(k, target.Fields[k]); err != nil {
			return transferFailed(0, err.Error(), err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(fileName)))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return transferFailed(0, err.Error(), err)
	}
	if _, err := part.Write(data); err != nil {
		return transferFailed(0, err.Error(), err)
	}
	if err := writer.Close(); err != nil {
		return transferFailed(0, err.Error(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, &buf)
	if err != nil {
		return transferFailed(0, err.Error(), err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transferFailed(0, err.Error(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, readErr := io.ReadAll(resp.Body)
		detail := string(body)
		if readErr != nil {
			detail = fmt.Sprintf("%s (body truncated: %v)", detail, readErr)
		}
		return transferFailed(resp.StatusCode, detail, readErr)
	}

	return nil
}

func transferFailed(statusCode int, body string, cause error) error {
	return apperror.Wrap(apperror.KindTransport, apperror.CodeTransferFailed,
		fmt.Sprintf(constant.StatusMessageUploadFailed, statusCode, body), cause)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
