package history

import (
	"testing"

	"pdf-chat-be/internal/constant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLog_StartsWithWelcome(t *testing.T) {
	l := NewLog()

	msgs := l.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, constant.WelcomeMessage, msgs[0].Text)
	assert.Equal(t, constant.MessageTypeResponse, msgs[0].Type)

	_, ok := l.Window()
	assert.False(t, ok)
}

func TestAppendExchange_WindowTracksLastExchange(t *testing.T) {
	l := NewLog()

	l.AppendExchange("What is chapter 1 about?", "Dragons.")
	w, ok := l.Window()
	require.True(t, ok)
	assert.Equal(t, "What is chapter 1 about?", w.PreviousRequestText)
	assert.Equal(t, "Dragons.", w.PreviousResponseText)

	l.AppendExchange("And chapter 2?", "More dragons.")
	w, ok = l.Window()
	require.True(t, ok)
	assert.Equal(t, "And chapter 2?", w.PreviousRequestText)
	assert.Equal(t, "More dragons.", w.PreviousResponseText)

	msgs := l.Messages()
	require.Len(t, msgs, 5)
	assert.Equal(t, constant.MessageTypeRequest, msgs[3].Type)
	assert.Equal(t, constant.MessageTypeResponse, msgs[4].Type)
}

func TestAppend_WindowNeedsMoreThanTwoMessages(t *testing.T) {
	l := NewLog()
	l.Reset(constant.GreetingMessage)

	l.Append("first question", constant.MessageTypeRequest)
	_, ok := l.Window()
	assert.False(t, ok, "two messages do not form a window")

	l.Append("first answer", constant.MessageTypeResponse)
	w, ok := l.Window()
	require.True(t, ok)
	assert.Equal(t, "first question", w.PreviousRequestText)
}

func TestReset_ClearsWindowAndSeedsGreeting(t *testing.T) {
	l := NewLog()
	l.AppendExchange("q", "a")

	l.Reset(constant.GreetingMessage)

	msgs := l.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, constant.GreetingMessage, msgs[0].Text)
	_, ok := l.Window()
	assert.False(t, ok)
}

func TestMessages_ReturnsCopy(t *testing.T) {
	l := NewLog()

	msgs := l.Messages()
	msgs[0].Text = "mutated"

	assert.Equal(t, constant.WelcomeMessage, l.Messages()[0].Text)
}
