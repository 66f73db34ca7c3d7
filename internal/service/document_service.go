package service

import (
	"context"

	"pdf-chat-be/internal/apperror"
	"pdf-chat-be/internal/dto"
	"pdf-chat-be/internal/entity"
	"pdf-chat-be/internal/pkg/logger"
	"pdf-chat-be/internal/repository/memory"
	"pdf-chat-be/pkg/events"
	"pdf-chat-be/pkg/rag/session"
	"pdf-chat-be/pkg/rag/upload"
)

type IDocumentService interface {
	SelectCandidate(ctx context.Context, fileName, contentType string, data []byte) (*dto.SelectCandidateResponse, error)
	Load(ctx context.Context, async bool) (*dto.LoadDocumentResponse, error)
	Clear(ctx context.Context) error
	Get(ctx context.Context) (*dto.GetDocumentResponse, error)
}

type documentService struct {
	session     *session.Manager
	coordinator *upload.Coordinator
	blobs       *memory.BlobRepository
	publisher   events.Publisher
	logger      logger.ILogger
}

func NewDocumentService(
	sessionManager *session.Manager,
	coordinator *upload.Coordinator,
	blobs *memory.BlobRepository,
	publisher events.Publisher,
	log logger.ILogger,
) IDocumentService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &documentService{
		session:     sessionManager,
		coordinator: coordinator,
		blobs:       blobs,
		publisher:   publisher,
		logger:      log,
	}
}

func (s *documentService) SelectCandidate(ctx context.Context, fileName, contentType string, data []byte) (*dto.SelectCandidateResponse, error) {
	candidate := &entity.Candidate{
		Document: entity.Document{
			FileName:    fileName,
			Size:        int64(len(data)),
			ContentType: contentType,
		},
		Data: data,
	}
	if err := s.session.SelectCandidate(candidate); err != nil {
		return nil, err
	}

	s.logger.Info("DOCUMENT", "Candidate selected", map[string]interface{}{
		"file_name":    fileName,
		"size":         len(data),
		"content_type": contentType,
	})

	return &dto.SelectCandidateResponse{Candidate: candidate.Document}, nil
}

func (s *documentService) Load(ctx context.Context, async bool) (*dto.LoadDocumentResponse, error) {
	if async {
		task, err := s.coordinator.Start(ctx)
		if err != nil {
			return nil, err
		}
		return &dto.LoadDocumentResponse{
			State:  string(task.State()),
			Status: s.session.Status(),
		}, nil
	}

	outcome, err := s.coordinator.Load(ctx)
	if err != nil {
		return nil, err
	}
	if outcome.State == upload.StateFailed {
		return nil, outcome.Err
	}

	res := &dto.LoadDocumentResponse{
		State:    string(outcome.State),
		Status:   outcome.Status,
		FileName: outcome.FileName,
		Chunks:   outcome.Chunks,
	}
	// AlreadyLoaded is informational and reported alongside a success state
	if outcome.Err != nil {
		res.Code = string(apperror.CodeOf(outcome.Err))
	}
	return res, nil
}

func (s *documentService) Clear(ctx context.Context) error {
	var (
		doc         entity.Document
		hadDocument bool
	)
	err := s.coordinator.Exclusive(func() {
		doc, hadDocument = s.session.Current()
		s.session.Clear()
		s.blobs.Flush()
	})
	if err != nil {
		return err
	}

	s.logger.Info("DOCUMENT", "Session cleared", map[string]interface{}{"file_name": doc.FileName})

	if hadDocument {
		event := events.New(events.TypeDocumentCleared, map[string]interface{}{"file_name": doc.FileName})
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("DOCUMENT", "Failed to publish event", map[string]interface{}{
				"event": event.Type,
				"error": err.Error(),
			})
		}
	}
	return nil
}

func (s *documentService) Get(ctx context.Context) (*dto.GetDocumentResponse, error) {
	snapshot := s.session.Snapshot()
	res := &dto.GetDocumentResponse{
		Version: snapshot.Version,
		Chunks:  snapshot.Chunks,
	}
	if res.Chunks == nil {
		res.Chunks = []entity.Chunk{}
	}
	if doc, ok := s.session.Current(); ok {
		res.Document = &doc
	}
	if candidate, ok := s.session.Candidate(); ok {
		res.Candidate = &candidate
	}
	return res, nil
}
