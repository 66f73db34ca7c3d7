// Package chunker turns a PDF into page-tagged, overlapping text chunks.
package chunker

import (
	"fmt"
	"strings"

	"pdf-chat-be/internal/apperror"
	"pdf-chat-be/internal/constant"
	"pdf-chat-be/internal/entity"
	"pdf-chat-be/pkg/utils"
)

// Extractor returns the plain text of every page, in page order.
type Extractor interface {
	ExtractPages(raw []byte) ([]string, error)
}

type Chunker struct {
	extractor Extractor
	chunkSize int
	overlap   int
}

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// New returns a Chunker. A non-positive chunkSize falls back to
// DefaultChunkSize; an overlap outside [0, chunkSize) falls back to a fifth
// of the chunk size.
func New(extractor Extractor, chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
		if overlap == 0 {
			overlap = DefaultChunkOverlap
		}
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 5
	}
	return &Chunker{
		extractor: extractor,
		chunkSize: chunkSize,
		overlap:   overlap,
	}
}

// Chunk extracts and splits raw. A document without any text is reported as
// an error result, not a Go error, so the caller can surface it as a status.
func (c *Chunker) Chunk(fileName string, raw []byte, declaredType string) (*entity.ChunkResult, error) {
	if !IsPDF(declaredType) {
		return nil, apperror.New(apperror.KindChunk, apperror.CodeUnsupportedType,
			fmt.Sprintf("unsupported content type %q", declaredType))
	}

	pages, err := c.extractor.ExtractPages(raw)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindChunk, apperror.CodeUnreadableDocument,
			fmt.Sprintf("could not read %q", fileName), err)
	}

	var docs []entity.Chunk
	for i, pageText := range pages {
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		runes := []rune(pageText)
		for _, span := range utils.SplitSpans(pageText, c.chunkSize, c.overlap) {
			docs = append(docs, entity.Chunk{
				Index: len(docs),
				Page:  i + 1,
				Start: span.Start,
				End:   span.End,
				Text:  utils.Slice(runes, span),
			})
		}
	}

	if len(docs) == 0 {
		return &entity.ChunkResult{
			Type:    constant.ChunkResultError,
			Message: fmt.Sprintf(constant.StatusMessageNoText, fileName),
		}, nil
	}

	return &entity.ChunkResult{
		Type:    constant.ChunkResultSuccess,
		Message: constant.StatusMessageLoaded,
		Docs:    docs,
	}, nil
}

// IsPDF reports whether a declared content type is application/pdf, ignoring
// case and parameters.
func IsPDF(declaredType string) bool {
	mediaType, _, _ := strings.Cut(declaredType, ";")
	return strings.EqualFold(strings.TrimSpace(mediaType), constant.ContentTypePDF)
}
