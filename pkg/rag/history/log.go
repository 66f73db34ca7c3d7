// Package history keeps the conversation log and the one-exchange window fed
// into the next query.
package history

import (
	"sync"
	"time"

	"pdf-chat-be/internal/constant"
	"pdf-chat-be/internal/entity"

	"github.com/google/uuid"
)

// Log is an append-only message log. It is safe for concurrent use.
type Log struct {
	mu       sync.RWMutex
	messages []entity.Message
	window   entity.Window
	now      func() time.Time
}

// NewLog starts a log holding only the welcome message.
func NewLog() *Log {
	l := &Log{now: time.Now}
	l.messages = []entity.Message{l.newMessage(constant.WelcomeMessage, constant.MessageTypeResponse)}
	return l
}

func (l *Log) newMessage(text, messageType string) entity.Message {
	return entity.Message{
		Id:        uuid.New(),
		Text:      text,
		Type:      messageType,
		CreatedAt: l.now(),
	}
}

// Append adds one message and recomputes the window.
func (l *Log) Append(text, messageType string) entity.Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := l.newMessage(text, messageType)
	l.messages = append(l.messages, msg)
	l.recompute()
	return msg
}

// AppendExchange adds a request and its response as one step, so a reader
// never sees the request without its answer.
func (l *Log) AppendExchange(question, answer string) (entity.Message, entity.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()

	request := l.newMessage(question, constant.MessageTypeRequest)
	response := l.newMessage(answer, constant.MessageTypeResponse)
	l.messages = append(l.messages, request, response)
	l.recompute()
	return request, response
}

// recompute must be called with mu held.
func (l *Log) recompute() {
	n := len(l.messages)
	if n <= 2*constant.WindowExchanges {
		return
	}
	l.window = entity.Window{
		PreviousRequestText:  l.messages[n-2].Text,
		PreviousResponseText: l.messages[n-1].Text,
	}
}

// Reset replaces the log with a single greeting and clears the window.
func (l *Log) Reset(greeting string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = []entity.Message{l.newMessage(greeting, constant.MessageTypeResponse)}
	l.window = entity.Window{}
}

// Window returns the trailing exchange and whether there is one.
func (l *Log) Window() (entity.Window, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	empty := l.window == entity.Window{}
	return l.window, !empty
}

// Messages returns a copy of the log.
func (l *Log) Messages() []entity.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]entity.Message, len(l.messages))
	copy(out, l.messages)
	return out
}
