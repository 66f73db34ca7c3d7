package factory

import (
	"fmt"
	"time"

	"pdf-chat-be/pkg/llm"
	"pdf-chat-be/pkg/llm/huggingface"
	"pdf-chat-be/pkg/llm/ollama"
	"pdf-chat-be/pkg/llm/openai"
)

func NewLLMProvider(providerType, modelName, baseURL string, timeout time.Duration) (llm.LLMProvider, error) {
	switch providerType {
	case "openai":
		return openai.NewOpenAIProvider(baseURL, modelName, timeout), nil
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName, timeout), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(baseURL, modelName, timeout), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
