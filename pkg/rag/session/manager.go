// Package session owns the single current document, its chunk set and the
// status of the most recent operation.
package session

import (
	"fmt"
	"sync"

	"pdf-chat-be/internal/apperror"
	"pdf-chat-be/internal/constant"
	"pdf-chat-be/internal/entity"
	"pdf-chat-be/pkg/rag/history"
)

// Manager is the only writer of document state. Reads through Snapshot are
// consistent: filename, chunks and version always belong together.
type Manager struct {
	mu        sync.RWMutex
	candidate *entity.Candidate
	current   *entity.Document
	chunks    []entity.Chunk
	version   uint64
	status    entity.Status

	history *history.Log

	listenersMu sync.RWMutex
	listeners   []func(entity.Status)
}

func NewManager(log *history.Log) *Manager {
	return &Manager{
		history: log,
		status:  entity.Status{Kind: constant.StatusIdle},
	}
}

// OnStatusChange registers fn to be called after every status change.
func (m *Manager) OnStatusChange(fn func(entity.Status)) {
	m.listenersMu.Lock()
	defer m.listenersMu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) notify(status entity.Status) {
	m.listenersMu.RLock()
	listeners := make([]func(entity.Status), len(m.listeners))
	copy(listeners, m.listeners)
	m.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn(status)
	}
}

// setStatus must be called with mu held. The caller notifies after unlocking.
func (m *Manager) setStatus(kind, message string) entity.Status {
	m.status = entity.Status{Kind: kind, Message: message}
	return m.status
}

// SelectCandidate stages a document without ingesting it.
func (m *Manager) SelectCandidate(candidate *entity.Candidate) error {
	if candidate == nil {
		return apperror.New(apperror.KindValidation, apperror.CodeNoFileChosen, constant.StatusMessageNoFileChosen)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.candidate = candidate
	return nil
}

// ValidateAndStage checks the staged candidate against the current document.
// On success the status moves to loading and the candidate is returned.
func (m *Manager) ValidateAndStage() (*entity.Candidate, error) {
	m.mu.Lock()

	var (
		status entity.Status
		err    error
	)
	candidate := m.candidate
	switch {
	case candidate == nil:
		status = m.setStatus(constant.StatusError, constant.StatusMessageNoFileChosen)
		err = apperror.New(apperror.KindValidation, apperror.CodeNoFileChosen, constant.StatusMessageNoFileChosen)
	case m.current != nil && candidate.FileName == m.current.FileName:
		// Informational, not a failure
		status = m.setStatus(constant.StatusSuccess, constant.StatusMessageAlreadyLoaded)
		err = apperror.New(apperror.KindValidation, apperror.CodeAlreadyLoaded, constant.StatusMessageAlreadyLoaded)
	case candidate.Size > constant.MaxFileSizeBytes:
		status = m.setStatus(constant.StatusError, constant.StatusMessageTooLarge)
		err = apperror.New(apperror.KindValidation, apperror.CodeTooLarge, constant.StatusMessageTooLarge)
	default:
		status = m.setStatus(constant.StatusLoading, fmt.Sprintf(constant.StatusMessageLoading, candidate.FileName))
	}
	m.mu.Unlock()

	m.notify(status)
	if err != nil {
		return nil, err
	}
	return candidate, nil
}

// Commit applies a chunking result. The chunk set and current document are
// replaced only when the result carries chunks; the conversation is reset
// only when the result is a success.
func (m *Manager) Commit(doc entity.Document, result *entity.ChunkResult) {
	m.mu.Lock()
	if len(result.Docs) > 0 {
		chunks := make([]entity.Chunk, len(result.Docs))
		copy(chunks, result.Docs)
		current := doc
		m.current = &current
		m.chunks = chunks
		m.version++
	}

	kind := result.Type
	switch kind {
	case constant.ChunkResultSuccess:
		kind = constant.StatusSuccess
	case constant.ChunkResultError:
		kind = constant.StatusError
	default:
		kind = constant.StatusIdle
	}
	// Reset under the lock so no reader sees the new version with the old conversation
	if result.Type == constant.ChunkResultSuccess {
		m.history.Reset(constant.GreetingMessage)
	}
	status := m.setStatus(kind, result.Message)
	m.mu.Unlock()

	m.notify(status)
}

// RecordExchange appends a completed exchange if the chunk set is still at
// version. Otherwise the log is untouched and DocumentChanged is returned.
func (m *Manager) RecordExchange(version uint64, question, answer string) (entity.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.version != version {
		return entity.Message{}, apperror.New(apperror.KindQuery, apperror.CodeDocumentChanged, constant.StatusMessageDocumentChanged)
	}
	_, response := m.history.AppendExchange(question, answer)
	return response, nil
}

// Report sets the status directly, for outcomes decided outside the manager.
func (m *Manager) Report(kind, message string) {
	m.mu.Lock()
	status := m.setStatus(kind, message)
	m.mu.Unlock()

	m.notify(status)
}

// Fail records a stage failure as an error status. Document state is untouched.
func (m *Manager) Fail(err error) {
	message := err.Error()
	if appErr, ok := apperror.As(err); ok && appErr.Message != "" {
		message = appErr.Message
	}
	m.Report(constant.StatusError, message)
}

// Clear releases the current document, its chunks and the staged candidate.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.candidate = nil
	m.current = nil
	m.chunks = nil
	m.version++
	status := m.setStatus(constant.StatusIdle, "")
	m.mu.Unlock()

	m.notify(status)
}

// Snapshot returns the current filename, a copy of the chunk set and its version.
func (m *Manager) Snapshot() entity.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := entity.Snapshot{Version: m.version}
	if m.current != nil {
		snapshot.FileName = m.current.FileName
	}
	if len(m.chunks) > 0 {
		snapshot.Chunks = make([]entity.Chunk, len(m.chunks))
		copy(snapshot.Chunks, m.chunks)
	}
	return snapshot
}

func (m *Manager) Version() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

func (m *Manager) Status() entity.Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Current returns the loaded document, if any.
func (m *Manager) Current() (entity.Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return entity.Document{}, false
	}
	return *m.current, true
}

// Candidate returns the staged document metadata, if any.
func (m *Manager) Candidate() (entity.Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.candidate == nil {
		return entity.Document{}, false
	}
	return m.candidate.Document, true
}
