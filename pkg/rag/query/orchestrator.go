// Package query answers one question at a time against the current chunk set.
package query

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"pdf-chat-be/internal/apperror"
	"pdf-chat-be/internal/constant"
	"pdf-chat-be/internal/entity"
	"pdf-chat-be/internal/pkg/logger"
	"pdf-chat-be/pkg/events"
	"pdf-chat-be/pkg/llm"
	"pdf-chat-be/pkg/rag/history"
	"pdf-chat-be/pkg/rag/prompt"
	"pdf-chat-be/pkg/rag/session"
)

type Orchestrator struct {
	session    *session.Manager
	history    *history.Log
	retriever  Retriever
	provider   llm.LLMProvider
	defaultKey string
	publisher  events.Publisher
	llmLogger  logger.ILogger

	busy atomic.Bool
}

func NewOrchestrator(
	sessionManager *session.Manager,
	log *history.Log,
	retriever Retriever,
	provider llm.LLMProvider,
	defaultKey string,
	publisher events.Publisher,
	llmLogger logger.ILogger,
) *Orchestrator {
	if retriever == nil {
		retriever = AllChunks{}
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Orchestrator{
		session:    sessionManager,
		history:    log,
		retriever:  retriever,
		provider:   provider,
		defaultKey: defaultKey,
		publisher:  publisher,
		llmLogger:  llmLogger,
	}
}

// Busy reports whether a question is being answered.
func (o *Orchestrator) Busy() bool {
	return o.busy.Load()
}

// Ask answers question from a consistent snapshot of the chunk set. Only a
// completed exchange is appended to the log; every failure leaves the log
// and the chunk set untouched and is reported as an error status.
func (o *Orchestrator) Ask(ctx context.Context, question, credential string) (*entity.Message, error) {
	if !o.busy.CompareAndSwap(false, true) {
		// Not reported as a status, the running question owns it
		return nil, apperror.New(apperror.KindConflict, apperror.CodeQueryInFlight, constant.StatusMessageQueryInFlight)
	}
	defer o.busy.Store(false)

	answer, err := o.ask(ctx, question, credential)
	if err != nil {
		o.session.Fail(err)
		return nil, err
	}
	return answer, nil
}

func (o *Orchestrator) ask(ctx context.Context, question, credential string) (*entity.Message, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperror.New(apperror.KindValidation, apperror.CodeEmptyQuestion, constant.StatusMessageEmptyQuestion)
	}

	snapshot := o.session.Snapshot()
	if snapshot.Empty() {
		return nil, apperror.New(apperror.KindQuery, apperror.CodeNoDocumentLoaded, constant.StatusMessageNoDocument)
	}

	if credential == "" {
		credential = o.defaultKey
	}
	if credential == "" {
		return nil, apperror.New(apperror.KindQuery, apperror.CodeMissingCredential, constant.StatusMessageMissingKey)
	}

	chunks, err := o.retriever.Retrieve(ctx, question, snapshot.Chunks)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindQuery, apperror.CodeGenerationFailed,
			fmt.Sprintf(constant.StatusMessageGenerationFailed, err.Error()), err)
	}

	builder := prompt.NewDocumentBuilder(snapshot.FileName, chunks, question)
	if window, ok := o.history.Window(); ok {
		builder.WithWindow(window)
	}
	messages := builder.Build()

	started := time.Now()
	answer, err := o.provider.Chat(ctx, messages, llm.WithAPIKey(credential))
	latency := time.Since(started)
	if err == nil && strings.TrimSpace(answer) == "" {
		err = fmt.Errorf("empty answer")
	}
	if err != nil {
		o.llmLogger.Error("QUERY", "Generation failed", map[string]interface{}{
			"file_name":  snapshot.FileName,
			"chunks":     len(chunks),
			"latency_ms": latency.Milliseconds(),
			"error":      err,
		})
		return nil, apperror.Wrap(apperror.KindQuery, apperror.CodeGenerationFailed,
			fmt.Sprintf(constant.StatusMessageGenerationFailed, err.Error()), err)
	}

	o.llmLogger.Info("QUERY", "Generation completed", map[string]interface{}{
		"file_name":     snapshot.FileName,
		"chunks":        len(chunks),
		"messages":      len(messages),
		"question":      question,
		"answer_length": len(answer),
		"latency_ms":    latency.Milliseconds(),
	})

	// A clear or reload while generating makes the answer refer to chunks
	// that are no longer current
	response, err := o.session.RecordExchange(snapshot.Version, question, answer)
	if err != nil {
		return nil, err
	}

	if err := o.publisher.Publish(ctx, events.New(events.TypeExchangeCompleted, map[string]interface{}{
		"file_name":  snapshot.FileName,
		"chunks":     len(chunks),
		"latency_ms": latency.Milliseconds(),
	})); err != nil {
		o.llmLogger.Warn("QUERY", "Failed to publish event", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return &response, nil
}
