package service

import (
	"context"

	"pdf-chat-be/internal/dto"
	"pdf-chat-be/pkg/rag/history"
	"pdf-chat-be/pkg/rag/query"
)

type IChatbotService interface {
	Ask(ctx context.Context, request *dto.AskRequest) (*dto.AskResponse, error)
	GetMessages(ctx context.Context) (*dto.GetMessagesResponse, error)
}

type chatbotService struct {
	orchestrator *query.Orchestrator
	history      *history.Log
}

func NewChatbotService(orchestrator *query.Orchestrator, log *history.Log) IChatbotService {
	return &chatbotService{
		orchestrator: orchestrator,
		history:      log,
	}
}

func (s *chatbotService) Ask(ctx context.Context, request *dto.AskRequest) (*dto.AskResponse, error) {
	answer, err := s.orchestrator.Ask(ctx, request.Question, request.ApiKey)
	if err != nil {
		return nil, err
	}

	res := &dto.AskResponse{Message: *answer}
	if window, ok := s.history.Window(); ok {
		res.Window = &window
	}
	return res, nil
}

func (s *chatbotService) GetMessages(ctx context.Context) (*dto.GetMessagesResponse, error) {
	res := &dto.GetMessagesResponse{Messages: s.history.Messages()}
	if window, ok := s.history.Window(); ok {
		res.Window = &window
	}
	return res, nil
}
