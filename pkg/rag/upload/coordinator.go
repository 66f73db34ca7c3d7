// Package upload runs one load attempt at a time through
// validate -> upload target -> transfer -> chunk -> commit.
package upload

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"pdf-chat-be/internal/apperror"
	"pdf-chat-be/internal/constant"
	"pdf-chat-be/internal/entity"
	"pdf-chat-be/internal/pkg/logger"
	"pdf-chat-be/internal/repository/memory"
	"pdf-chat-be/pkg/blob"
	"pdf-chat-be/pkg/events"
	"pdf-chat-be/pkg/rag/session"
)

type State string

const (
	StateIdle                   State = "idle"
	StateValidating             State = "validating"
	StateAwaitingTransferTarget State = "awaiting_transfer_target"
	StateTransferring           State = "transferring"
	StateChunking               State = "chunking"
	StateSucceeded              State = "succeeded"
	StateFailed                 State = "failed"
)

func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Outcome is the terminal result of a load attempt. Err is set for every
// failure and for the informational AlreadyLoaded success.
type Outcome struct {
	State    State
	Status   entity.Status
	FileName string
	Chunks   int
	Err      error
}

// Task is a handle on one running load attempt.
type Task struct {
	mu      sync.RWMutex
	state   State
	outcome Outcome
	done    chan struct{}
}

func newTask() *Task {
	return &Task{state: StateIdle, done: make(chan struct{})}
}

func (t *Task) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

func (t *Task) setState(s State) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}

func (t *Task) finish(outcome Outcome) {
	t.mu.Lock()
	t.state = outcome.State
	t.outcome = outcome
	t.mu.Unlock()
	close(t.done)
}

// Done is closed once the attempt reaches a terminal state.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Outcome returns the result once the task is done.
func (t *Task) Outcome() (Outcome, bool) {
	select {
	case <-t.done:
		t.mu.RLock()
		defer t.mu.RUnlock()
		return t.outcome, true
	default:
		return Outcome{}, false
	}
}

// Wait blocks until the task is done or ctx ends. A cancelled wait does not
// stop the task.
func (t *Task) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-t.done:
		outcome, _ := t.Outcome()
		return outcome, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

type Coordinator struct {
	session   *session.Manager
	transport *blob.Client
	blobs     *memory.BlobRepository
	trigger   ChunkTrigger
	publisher events.Publisher
	logger    logger.ILogger

	busy    atomic.Bool
	current atomic.Pointer[Task]
}

func NewCoordinator(
	sessionManager *session.Manager,
	transport *blob.Client,
	blobs *memory.BlobRepository,
	trigger ChunkTrigger,
	publisher events.Publisher,
	log logger.ILogger,
) *Coordinator {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Coordinator{
		session:   sessionManager,
		transport: transport,
		blobs:     blobs,
		trigger:   trigger,
		publisher: publisher,
		logger:    log,
	}
}

// Busy reports whether a load attempt is in flight.
func (c *Coordinator) Busy() bool {
	return c.busy.Load()
}

// Current returns the most recent task, if any.
func (c *Coordinator) Current() *Task {
	return c.current.Load()
}

// Start begins a load attempt for the staged candidate. The attempt is
// detached from ctx cancellation and always runs to a terminal state.
func (c *Coordinator) Start(ctx context.Context) (*Task, error) {
	if !c.busy.CompareAndSwap(false, true) {
		return nil, apperror.New(apperror.KindConflict, apperror.CodeLoadInFlight, "a document is already loading")
	}

	task := newTask()
	c.current.Store(task)
	runCtx := context.WithoutCancel(ctx)

	go func() {
		outcome := c.run(runCtx, task)
		// Release before signalling so a waiter can start the next attempt
		c.busy.Store(false)
		task.finish(outcome)
	}()

	return task, nil
}

// Exclusive runs fn while holding the load slot, so no attempt can start or
// commit until fn returns. It fails with LoadInFlight if an attempt is running.
func (c *Coordinator) Exclusive(fn func()) error {
	if !c.busy.CompareAndSwap(false, true) {
		return apperror.New(apperror.KindConflict, apperror.CodeLoadInFlight, "a document is already loading")
	}
	defer c.busy.Store(false)

	fn()
	return nil
}

// Load runs a full attempt and waits for it.
func (c *Coordinator) Load(ctx context.Context) (Outcome, error) {
	task, err := c.Start(ctx)
	if err != nil {
		return Outcome{}, err
	}
	return task.Wait(ctx)
}

func (c *Coordinator) run(ctx context.Context, task *Task) Outcome {
	started := time.Now()

	task.setState(StateValidating)
	candidate, err := c.session.ValidateAndStage()
	if err != nil {
		state := StateFailed
		if errors.Is(err, apperror.ErrAlreadyLoaded) {
			state = StateSucceeded
		}
		c.logger.Info("UPLOAD", "Validation stopped load", map[string]interface{}{
			"code": apperror.CodeOf(err),
		})
		outcome := Outcome{State: state, Status: c.session.Status(), Err: err}
		if current, ok := c.session.Current(); ok && state == StateSucceeded {
			outcome.FileName = current.FileName
			outcome.Chunks = len(c.session.Snapshot().Chunks)
		}
		return outcome
	}
	doc := candidate.Document

	if c.transport.Enabled() {
		task.setState(StateAwaitingTransferTarget)
		target, err := c.transport.RequestUploadTarget(ctx, doc.FileName, doc.ContentType)
		if err != nil {
			return c.fail(ctx, doc, err)
		}

		task.setState(StateTransferring)
		if err := c.transport.Transfer(ctx, target, doc.FileName, doc.ContentType, candidate.Data); err != nil {
			return c.fail(ctx, doc, err)
		}
	}
	c.blobs.Save(doc.FileName, candidate.Data)

	task.setState(StateChunking)
	result, err := c.trigger.Trigger(ctx, doc.FileName, doc.ContentType)
	if err != nil {
		return c.fail(ctx, doc, err)
	}

	c.session.Commit(doc, result)

	if result.Type != constant.ChunkResultSuccess {
		err := apperror.New(apperror.KindChunk, apperror.CodeEmptyExtraction, result.Message)
		c.logger.Warn("UPLOAD", "Chunking reported no usable result", map[string]interface{}{
			"file_name": doc.FileName,
			"type":      result.Type,
			"message":   result.Message,
		})
		c.publishFailed(ctx, doc, err)
		return Outcome{State: StateFailed, Status: c.session.Status(), FileName: doc.FileName, Err: err}
	}

	c.logger.Info("UPLOAD", "Document loaded", map[string]interface{}{
		"file_name":   doc.FileName,
		"size":        doc.Size,
		"chunks":      len(result.Docs),
		"duration_ms": time.Since(started).Milliseconds(),
	})
	c.publish(ctx, events.New(events.TypeDocumentLoaded, map[string]interface{}{
		"file_name": doc.FileName,
		"size":      doc.Size,
		"chunks":    len(result.Docs),
	}))

	return Outcome{
		State:    StateSucceeded,
		Status:   c.session.Status(),
		FileName: doc.FileName,
		Chunks:   len(result.Docs),
	}
}

func (c *Coordinator) fail(ctx context.Context, doc entity.Document, err error) Outcome {
	c.session.Fail(err)
	c.logger.Error("UPLOAD", "Load attempt failed", map[string]interface{}{
		"file_name": doc.FileName,
		"code":      apperror.CodeOf(err),
		"error":     err,
	})
	c.publishFailed(ctx, doc, err)
	return Outcome{State: StateFailed, Status: c.session.Status(), FileName: doc.FileName, Err: err}
}

func (c *Coordinator) publishFailed(ctx context.Context, doc entity.Document, err error) {
	c.publish(ctx, events.New(events.TypeDocumentLoadFailed, map[string]interface{}{
		"file_name": doc.FileName,
		"code":      string(apperror.CodeOf(err)),
		"message":   c.session.Status().Message,
	}))
}

func (c *Coordinator) publish(ctx context.Context, event events.Event) {
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Warn("UPLOAD", "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
