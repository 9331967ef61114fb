// Package resume turns uploaded resume files into structured JSON.
package resume

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/careerpath/internal/ai"
	"github.com/spigell/careerpath/internal/logger"
)

// ErrEmptyUpload is returned for a resume file without content.
var ErrEmptyUpload = errors.New("resume file is empty")

// Upload is a received resume file.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Result is the parsed resume returned to clients.
type Result struct {
	Filename    string      `json:"filename"`
	ContentType string      `json:"content_type"`
	Size        int         `json:"size"`
	Text        string      `json:"text"`
	Emails      []string    `json:"emails"`
	Phones      []string    `json:"phones"`
	Links       []string    `json:"links"`
	Profile     *ai.Profile `json:"profile,omitempty"`
	ArchiveKey  string      `json:"archive_key,omitempty"`
}

// Parser extracts text and contact details and optionally enriches the result
// with an AI profile and an archived copy of the original file.
type Parser struct {
	extractor ai.ProfileExtractor
	archiver  Archiver
	logger    *zap.Logger
}

// New returns a Parser. A nil extractor or archiver disables that step.
func New(extractor ai.ProfileExtractor, archiver Archiver, log *zap.Logger) *Parser {
	return &Parser{
		extractor: extractor,
		archiver:  archiver,
		logger:    logger.WithFields(log, zap.String("component", "resume")),
	}
}

func (p *Parser) Parse(ctx context.Context, upload *Upload) (*Result, error) {
	if upload == nil || len(upload.Data) == 0 {
		return nil, ErrEmptyUpload
	}

	mediaType := DetectContentType(upload.ContentType, upload.Filename, upload.Data)
	log := p.logger.With(
		zap.String("filename", upload.Filename),
		zap.String("content_type", mediaType),
		zap.Int("size", len(upload.Data)),
	)

	text, err := ExtractText(mediaType, upload.Data)
	if err != nil {
		return nil, fmt.Errorf("extract text from %q: %w", upload.Filename, err)
	}
	text = strings.TrimSpace(text)

	contacts := ExtractContacts(text)
	result := &Result{
		Filename:    upload.Filename,
		ContentType: mediaType,
		Size:        len(upload.Data),
		Text:        text,
		Emails:      contacts.Emails,
		Phones:      contacts.Phones,
		Links:       contacts.Links,
	}

	if p.extractor != nil && text != "" {
		profile, err := p.extractor.Extract(ctx, text)
		if err != nil {
			log.Warn("profile extraction failed", zap.Error(err))
		} else {
			result.Profile = profile
		}
	}

	if p.archiver != nil {
		stored := *upload
		stored.ContentType = mediaType
		key, err := p.archiver.Archive(ctx, &stored)
		if err != nil {
			return nil, fmt.Errorf("archive resume: %w", err)
		}
		result.ArchiveKey = key
	}

	log.Info("resume parsed",
		zap.Int("text_length", len(text)),
		zap.Bool("profile", result.Profile != nil),
		zap.String("archive_key", result.ArchiveKey),
	)

	return result, nil
}
