package prompt

import (
	"fmt"
	"strings"

	"pdf-chat-be/internal/constant"
	"pdf-chat-be/internal/entity"
	"pdf-chat-be/pkg/llm"
)

// DocumentBuilder assembles the provider messages for one question: a system
// message carrying the excerpts, the previous exchange if any, then the question.
type DocumentBuilder struct {
	fileName string
	chunks   []entity.Chunk
	window   *entity.Window
	question string
}

func NewDocumentBuilder(fileName string, chunks []entity.Chunk, question string) *DocumentBuilder {
	return &DocumentBuilder{
		fileName: fileName,
		chunks:   chunks,
		question: question,
	}
}

// WithWindow adds the previous exchange as prior turns.
func (b *DocumentBuilder) WithWindow(window entity.Window) *DocumentBuilder {
	b.window = &window
	return b
}

func (b *DocumentBuilder) Build() []llm.Message {
	var system strings.Builder
	b.writeTask(&system)
	b.writeGuidelines(&system)
	b.writeReferenceMaterial(&system)

	messages := []llm.Message{{Role: constant.LLMRoleSystem, Content: system.String()}}

	if b.window != nil {
		messages = append(messages,
			llm.Message{Role: constant.LLMRoleUser, Content: b.window.PreviousRequestText},
			llm.Message{Role: constant.LLMRoleAssistant, Content: b.window.PreviousResponseText},
		)
	}

	return append(messages, llm.Message{Role: constant.LLMRoleUser, Content: b.question})
}

func (b *DocumentBuilder) writeTask(prompt *strings.Builder) {
	prompt.WriteString("<task>\n")
	prompt.WriteString(constant.DocumentQATaskPrompt)
	prompt.WriteString("\n</task>\n\n")
}

func (b *DocumentBuilder) writeGuidelines(prompt *strings.Builder) {
	prompt.WriteString("<guidelines>\n")
	prompt.WriteString(constant.DocumentQAGuidelinesPrompt)
	prompt.WriteString("\n</guidelines>\n\n")
}

func (b *DocumentBuilder) writeReferenceMaterial(prompt *strings.Builder) {
	fmt.Fprintf(prompt, "<reference_material document=%q>\n", b.fileName)
	for _, chunk := range b.chunks {
		fmt.Fprintf(prompt, "[page %d, chunk %d]\n", chunk.Page, chunk.Index)
		prompt.WriteString(chunk.Text)
		prompt.WriteString("\n\n")
	}
	prompt.WriteString("</reference_material>")
}
