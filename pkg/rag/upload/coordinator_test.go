package upload

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"pdf-chat-be/internal/apperror"
	"pdf-chat-be/internal/constant"
	"pdf-chat-be/internal/entity"
	"pdf-chat-be/internal/pkg/logger"
	"pdf-chat-be/internal/repository/memory"
	"pdf-chat-be/pkg/blob"
	"pdf-chat-be/pkg/chunker"
	"pdf-chat-be/pkg/events"
	"pdf-chat-be/pkg/rag/history"
	"pdf-chat-be/pkg/rag/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collaborators fakes the broker, the bucket and the split endpoint on one server.
type collaborators struct {
	srv           *httptest.Server
	hits          atomic.Int32
	bucketStatus  int
	bucketBody    string
	triggerResult string
}

func newCollaborators(t *testing.T) *collaborators {
	c := &collaborators{
		bucketStatus:  http.StatusNoContent,
		triggerResult: `{"result":{"type":"success","message":"Loaded!","docs":[{"pageContent":"chunk0","metadata":{"loc":{"pageNumber":1}}},{"pageContent":"chunk1","metadata":{"loc":{"pageNumber":2}}}]}}`,
	}
	c.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.hits.Add(1)
		switch r.URL.Path {
		case "/broker":
			_, _ = w.Write([]byte(`{"url":"` + c.srv.URL + `/bucket","fields":{"key":"` + r.URL.Query().Get("fileName") + `"}}`))
		case "/bucket":
			w.WriteHeader(c.bucketStatus)
			_, _ = w.Write([]byte(c.bucketBody))
		case "/split":
			_, _ = w.Write([]byte(c.triggerResult))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(c.srv.Close)
	return c
}

type recorder struct {
	types []string
}

func (r *recorder) Publish(_ context.Context, event events.Event) error {
	r.types = append(r.types, event.EventType())
	return nil
}

type harness struct {
	manager     *session.Manager
	log         *history.Log
	coordinator *Coordinator
	events      *recorder
}

func newHarness(brokerURL string, trigger ChunkTrigger, blobs *memory.BlobRepository) *harness {
	log := history.NewLog()
	manager := session.NewManager(log)
	rec := &recorder{}
	if blobs == nil {
		blobs = memory.NewBlobRepository()
	}
	return &harness{
		manager:     manager,
		log:         log,
		events:      rec,
		coordinator: NewCoordinator(manager, blob.NewClient(brokerURL, 5*time.Second), blobs, trigger, rec, logger.NewNopLogger()),
	}
}

func pdfCandidate(name string, size int64) *entity.Candidate {
	return &entity.Candidate{
		Document: entity.Document{FileName: name, Size: size, ContentType: constant.ContentTypePDF},
		Data:     []byte("%PDF-1.7 fake"),
	}
}

func TestLoad_FullPipelineSuccess(t *testing.T) {
	collab := newCollaborators(t)
	h := newHarness(collab.srv.URL+"/broker", NewRemoteTrigger(collab.srv.URL+"/split", 5*time.Second), nil)
	h.log.AppendExchange("stale question", "stale answer")

	require.NoError(t, h.manager.SelectCandidate(pdfCandidate("report.pdf", 10*1024*1024)))
	outcome, err := h.coordinator.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateSucceeded, outcome.State)
	assert.NoError(t, outcome.Err)
	assert.Equal(t, 2, outcome.Chunks)
	assert.Equal(t, entity.Status{Kind: constant.StatusSuccess, Message: "Loaded!"}, h.manager.Status())

	snapshot := h.manager.Snapshot()
	assert.Equal(t, "report.pdf", snapshot.FileName)
	require.Len(t, snapshot.Chunks, 2)
	assert.Equal(t, "chunk0", snapshot.Chunks[0].Text)
	assert.Equal(t, 2, snapshot.Chunks[1].Page)

	msgs := h.log.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, constant.GreetingMessage, msgs[0].Text)

	assert.Equal(t, []string{events.TypeDocumentLoaded}, h.events.types)
	assert.EqualValues(t, 3, collab.hits.Load())
	assert.False(t, h.coordinator.Busy())
}

func TestLoad_TooLargeMakesNoNetworkCall(t *testing.T) {
	collab := newCollaborators(t)
	h := newHarness(collab.srv.URL+"/broker", NewRemoteTrigger(collab.srv.URL+"/split", 5*time.Second), nil)

	require.NoError(t, h.manager.SelectCandidate(pdfCandidate("x.pdf", 20*1024*1024)))
	outcome, err := h.coordinator.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateFailed, outcome.State)
	assert.ErrorIs(t, outcome.Err, apperror.ErrTooLarge)
	assert.Contains(t, h.manager.Status().Message, "16 MB")
	assert.Zero(t, collab.hits.Load())
}

func TestLoad_SameFileTwiceIsAlreadyLoaded(t *testing.T) {
	collab := newCollaborators(t)
	h := newHarness(collab.srv.URL+"/broker", NewRemoteTrigger(collab.srv.URL+"/split", 5*time.Second), nil)

	require.NoError(t, h.manager.SelectCandidate(pdfCandidate("report.pdf", 1024)))
	_, err := h.coordinator.Load(context.Background())
	require.NoError(t, err)
	before := h.manager.Snapshot()
	hits := collab.hits.Load()

	require.NoError(t, h.manager.SelectCandidate(pdfCandidate("report.pdf", 1024)))
	outcome, err := h.coordinator.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateSucceeded, outcome.State)
	assert.ErrorIs(t, outcome.Err, apperror.ErrAlreadyLoaded)
	assert.Equal(t, constant.StatusSuccess, h.manager.Status().Kind)
	assert.Equal(t, before, h.manager.Snapshot())
	assert.Equal(t, hits, collab.hits.Load())
}

func TestLoad_TransferFailureSurfacesStatusAndBody(t *testing.T) {
	collab := newCollaborators(t)
	collab.bucketStatus = http.StatusForbidden
	collab.bucketBody = "AccessDenied"
	h := newHarness(collab.srv.URL+"/broker", NewRemoteTrigger(collab.srv.URL+"/split", 5*time.Second), nil)

	require.NoError(t, h.manager.SelectCandidate(pdfCandidate("a.pdf", 1024)))
	outcome, err := h.coordinator.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateFailed, outcome.State)
	assert.ErrorIs(t, outcome.Err, apperror.ErrTransferFailed)
	assert.Equal(t, constant.StatusError, h.manager.Status().Kind)
	assert.Contains(t, h.manager.Status().Message, "403 AccessDenied")
	assert.True(t, h.manager.Snapshot().Empty())
	assert.EqualValues(t, 2, collab.hits.Load(), "split endpoint is never reached")
	assert.Equal(t, []string{events.TypeDocumentLoadFailed}, h.events.types)
}

func TestLoad_BrokerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	h := newHarness(srv.URL, NewRemoteTrigger(srv.URL, 5*time.Second), nil)

	require.NoError(t, h.manager.SelectCandidate(pdfCandidate("a.pdf", 1024)))
	outcome, err := h.coordinator.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateFailed, outcome.State)
	assert.ErrorIs(t, outcome.Err, apperror.ErrBrokerFailed)
	assert.Equal(t, constant.StatusError, h.manager.Status().Kind)
}

func TestLoad_ErrorResultKeepsExistingDocument(t *testing.T) {
	collab := newCollaborators(t)
	h := newHarness(collab.srv.URL+"/broker", NewRemoteTrigger(collab.srv.URL+"/split", 5*time.Second), nil)

	require.NoError(t, h.manager.SelectCandidate(pdfCandidate("good.pdf", 1024)))
	_, err := h.coordinator.Load(context.Background())
	require.NoError(t, err)
	before := h.manager.Snapshot()

	collab.triggerResult = `{"result":{"type":"error","message":"empty text","docs":[]}}`
	require.NoError(t, h.manager.SelectCandidate(pdfCandidate("scan.pdf", 1024)))
	outcome, err := h.coordinator.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateFailed, outcome.State)
	assert.ErrorIs(t, outcome.Err, apperror.ErrEmptyExtraction)
	assert.Equal(t, entity.Status{Kind: constant.StatusError, Message: "empty text"}, h.manager.Status())
	assert.Equal(t, before, h.manager.Snapshot())
}

type blockingTrigger struct {
	release chan struct{}
	entered chan struct{}
}

func (b *blockingTrigger) Trigger(ctx context.Context, fileName, _ string) (*entity.ChunkResult, error) {
	close(b.entered)
	<-b.release
	return &entity.ChunkResult{
		Type:    constant.ChunkResultSuccess,
		Message: constant.StatusMessageLoaded,
		Docs:    []entity.Chunk{{Index: 0, Page: 1, Text: fileName}},
	}, nil
}

func TestStart_RejectsConcurrentLoadAndSurvivesCancel(t *testing.T) {
	trigger := &blockingTrigger{release: make(chan struct{}), entered: make(chan struct{})}
	h := newHarness("", trigger, nil)
	require.NoError(t, h.manager.SelectCandidate(pdfCandidate("a.pdf", 1024)))

	ctx, cancel := context.WithCancel(context.Background())
	task, err := h.coordinator.Start(ctx)
	require.NoError(t, err)
	<-trigger.entered
	assert.Equal(t, StateChunking, task.State())
	assert.True(t, h.coordinator.Busy())

	_, err = h.coordinator.Start(context.Background())
	assert.ErrorIs(t, err, apperror.ErrLoadInFlight)

	// Abandoning the caller does not abort the attempt
	cancel()
	_, err = task.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	close(trigger.release)
	outcome, err := task.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, outcome.State)
	assert.Equal(t, "a.pdf", h.manager.Snapshot().FileName)
	assert.False(t, h.coordinator.Busy())
	assert.Same(t, task, h.coordinator.Current())
}

type pagesExtractor []string

func (p pagesExtractor) ExtractPages([]byte) ([]string, error) {
	return p, nil
}

func TestLoad_LocalChunkingWithoutBroker(t *testing.T) {
	blobs := memory.NewBlobRepository()
	c := chunker.New(pagesExtractor{"first page text", "second page text"}, 1000, 200)
	h := newHarness("", NewLocalTrigger(blobs, c), blobs)

	require.NoError(t, h.manager.SelectCandidate(pdfCandidate("local.pdf", 2048)))
	outcome, err := h.coordinator.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateSucceeded, outcome.State)
	snapshot := h.manager.Snapshot()
	require.Len(t, snapshot.Chunks, 2)
	assert.Equal(t, "second page text", snapshot.Chunks[1].Text)
	assert.Equal(t, 2, snapshot.Chunks[1].Page)

	data, found := blobs.Get("local.pdf")
	assert.True(t, found)
	assert.NotEmpty(t, data)
}

func TestLoad_NoFileChosen(t *testing.T) {
	h := newHarness("", &blockingTrigger{}, nil)

	outcome, err := h.coordinator.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateFailed, outcome.State)
	assert.ErrorIs(t, outcome.Err, apperror.ErrNoFileChosen)
	assert.Equal(t, "Please choose a PDF first!", h.manager.Status().Message)
}

func TestExclusive_SharesTheLoadSlot(t *testing.T) {
	trigger := &blockingTrigger{release: make(chan struct{}), entered: make(chan struct{})}
	h := newHarness("", trigger, nil)
	require.NoError(t, h.manager.SelectCandidate(pdfCandidate("a.pdf", 1024)))

	// A load cannot start while the slot is held
	ran := false
	err := h.coordinator.Exclusive(func() {
		ran = true
		_, startErr := h.coordinator.Start(context.Background())
		assert.ErrorIs(t, startErr, apperror.ErrLoadInFlight)
		h.manager.Clear()
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.False(t, h.coordinator.Busy())

	// And the slot cannot be taken while a load runs
	require.NoError(t, h.manager.SelectCandidate(pdfCandidate("a.pdf", 1024)))
	task, err := h.coordinator.Start(context.Background())
	require.NoError(t, err)
	<-trigger.entered

	err = h.coordinator.Exclusive(func() { t.Error("ran during a load") })
	assert.ErrorIs(t, err, apperror.ErrLoadInFlight)

	close(trigger.release)
	outcome, err := task.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, outcome.State)
}
