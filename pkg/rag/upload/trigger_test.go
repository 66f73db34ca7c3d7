package upload

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pdf-chat-be/internal/apperror"
	"pdf-chat-be/internal/repository/memory"
	"pdf-chat-be/pkg/chunker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteTrigger_NativeChunkShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "my file.pdf", r.URL.Query().Get("fileName"))
		_, _ = w.Write([]byte(`{"result":{"type":"success","message":"Loaded!","docs":[{"index":0,"page":3,"start":0,"end":5,"text":"hello"}]}}`))
	}))
	defer srv.Close()

	result, err := NewRemoteTrigger(srv.URL, 5*time.Second).Trigger(context.Background(), "my file.pdf", "application/pdf")
	require.NoError(t, err)

	assert.Equal(t, "success", result.Type)
	require.Len(t, result.Docs, 1)
	assert.Equal(t, 3, result.Docs[0].Page)
	assert.Equal(t, "hello", result.Docs[0].Text)
	assert.Equal(t, 5, result.Docs[0].End)
}

func TestRemoteTrigger_LoaderDocumentShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":{"type":"success","message":"Loaded!","docs":[
			{"pageContent":"ünï","metadata":{"loc":{"pageNumber":4}}},
			{"pageContent":"two","metadata":{"loc":{"pageNumber":5}}}]}}`))
	}))
	defer srv.Close()

	result, err := NewRemoteTrigger(srv.URL, 5*time.Second).Trigger(context.Background(), "a.pdf", "")
	require.NoError(t, err)

	require.Len(t, result.Docs, 2)
	assert.Equal(t, 0, result.Docs[0].Index)
	assert.Equal(t, 4, result.Docs[0].Page)
	assert.Equal(t, 3, result.Docs[0].End)
	assert.Equal(t, 1, result.Docs[1].Index)
	assert.Equal(t, "two", result.Docs[1].Text)
}

func TestRemoteTrigger_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fileName") == "bad-json.pdf" {
			_, _ = w.Write([]byte(`{`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	trigger := NewRemoteTrigger(srv.URL, 5*time.Second)

	_, err := trigger.Trigger(context.Background(), "bad-json.pdf", "")
	assert.ErrorIs(t, err, apperror.ErrTriggerFailed)

	_, err = trigger.Trigger(context.Background(), "boom.pdf", "")
	assert.ErrorIs(t, err, apperror.ErrTriggerFailed)
}

func TestLocalTrigger_MissingBlob(t *testing.T) {
	trigger := NewLocalTrigger(memory.NewBlobRepository(), chunker.New(pagesExtractor{"x"}, 100, 10))

	_, err := trigger.Trigger(context.Background(), "ghost.pdf", "application/pdf")

	assert.ErrorIs(t, err, apperror.ErrUnreadableDocument)
}
