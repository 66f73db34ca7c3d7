package service

import (
	"context"

	"pdf-chat-be/internal/dto"
	"pdf-chat-be/pkg/rag/query"
	"pdf-chat-be/pkg/rag/session"
	"pdf-chat-be/pkg/rag/upload"
)

type ISessionService interface {
	GetStatus(ctx context.Context) (*dto.GetStatusResponse, error)
}

type sessionService struct {
	session      *session.Manager
	coordinator  *upload.Coordinator
	orchestrator *query.Orchestrator
}

func NewSessionService(sessionManager *session.Manager, coordinator *upload.Coordinator, orchestrator *query.Orchestrator) ISessionService {
	return &sessionService{
		session:      sessionManager,
		coordinator:  coordinator,
		orchestrator: orchestrator,
	}
}

func (s *sessionService) GetStatus(ctx context.Context) (*dto.GetStatusResponse, error) {
	res := &dto.GetStatusResponse{
		Status:    s.session.Status(),
		Loading:   s.coordinator.Busy(),
		Answering: s.orchestrator.Busy(),
	}
	if task := s.coordinator.Current(); task != nil {
		res.LoadState = string(task.State())
	}
	if doc, ok := s.session.Current(); ok {
		res.CurrentFile = doc.FileName
	}
	return res, nil
}
