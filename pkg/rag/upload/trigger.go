package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"pdf-chat-be/internal/apperror"
	"pdf-chat-be/internal/constant"
	"pdf-chat-be/internal/entity"
	"pdf-chat-be/internal/repository/memory"
	"pdf-chat-be/pkg/chunker"
)

// ChunkTrigger splits the document stored under fileName into chunks.
type ChunkTrigger interface {
	Trigger(ctx context.Context, fileName, contentType string) (*entity.ChunkResult, error)
}

// LocalTrigger chunks in-process from the bytes kept in the blob repository.
type LocalTrigger struct {
	blobs   *memory.BlobRepository
	chunker *chunker.Chunker
}

func NewLocalTrigger(blobs *memory.BlobRepository, c *chunker.Chunker) *LocalTrigger {
	return &LocalTrigger{blobs: blobs, chunker: c}
}

func (t *LocalTrigger) Trigger(_ context.Context, fileName, contentType string) (*entity.ChunkResult, error) {
	data, found := t.blobs.Get(fileName)
	if !found {
		return nil, apperror.New(apperror.KindChunk, apperror.CodeUnreadableDocument,
			fmt.Sprintf("no stored bytes for %q", fileName))
	}
	return t.chunker.Chunk(fileName, data, contentType)
}

// RemoteTrigger asks a split endpoint to chunk the uploaded object.
type RemoteTrigger struct {
	triggerURL string
	client     *http.Client
}

func NewRemoteTrigger(triggerURL string, timeout time.Duration) *RemoteTrigger {
	return &RemoteTrigger{
		triggerURL: triggerURL,
		client:     &http.Client{Timeout: timeout},
	}
}

type triggerResponse struct {
	Result struct {
		Type    string          `json:"type"`
		Message string          `json:"message"`
		Docs    []remoteDocJSON `json:"docs"`
	} `json:"result"`
}

// remoteDocJSON accepts both our chunk shape and the loader document shape
// {pageContent, metadata: {loc: {pageNumber}}}.
type remoteDocJSON struct {
	Index       *int   `json:"index"`
	Page        int    `json:"page"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Text        string `json:"text"`
	PageContent string `json:"pageContent"`
	Metadata    struct {
		Loc struct {
			PageNumber int `json:"pageNumber"`
		} `json:"loc"`
	} `json:"metadata"`
}

func (d remoteDocJSON) toChunk(position int) entity.Chunk {
	chunk := entity.Chunk{
		Index: position,
		Page:  d.Page,
		Start: d.Start,
		End:   d.End,
		Text:  d.Text,
	}
	if d.Index != nil {
		chunk.Index = *d.Index
	}
	if chunk.Text == "" {
		chunk.Text = d.PageContent
	}
	if chunk.Page == 0 {
		chunk.Page = d.Metadata.Loc.PageNumber
	}
	if chunk.End == 0 {
		chunk.End = chunk.Start + len([]rune(chunk.Text))
	}
	return chunk
}

func (t *RemoteTrigger) Trigger(ctx context.Context, fileName, _ string) (*entity.ChunkResult, error) {
	triggerFailed := func(err error) error {
		return apperror.Wrap(apperror.KindTransport, apperror.CodeTriggerFailed,
			fmt.Sprintf(constant.StatusMessageTriggerFailed, fileName), err)
	}

	u, err := url.Parse(t.triggerURL)
	if err != nil {
		return nil, triggerFailed(fmt.Errorf("parse trigger url: %w", err))
	}
	q := u.Query()
	q.Set("fileName", fileName)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, triggerFailed(fmt.Errorf("create request: %w", err))
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, triggerFailed(fmt.Errorf("trigger request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, triggerFailed(fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, triggerFailed(fmt.Errorf("trigger error: status %d, body: %s", resp.StatusCode, string(body)))
	}

	var payload triggerResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, triggerFailed(fmt.Errorf("unmarshal response: %w", err))
	}

	result := &entity.ChunkResult{
		Type:    payload.Result.Type,
		Message: payload.Result.Message,
	}
	for i, doc := range payload.Result.Docs {
		result.Docs = append(result.Docs, doc.toChunk(i))
	}
	return result, nil
}
