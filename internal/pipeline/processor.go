// Package pipeline coordinates the stages between a received chat message
// and an appended record: dedup, OCR, text cleanup, extraction, persistence,
// notification.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/openelig/eligibility-tracker/internal/entity"
	"github.com/openelig/eligibility-tracker/internal/extract"
	"github.com/openelig/eligibility-tracker/internal/notify"
	"github.com/openelig/eligibility-tracker/internal/ocr"
	"github.com/openelig/eligibility-tracker/internal/repository"
)

// Message is one unit of work: a chat message or an ingested document. Text
// and ImageDataURL may both be set; OCR text wins when the image yields any.
type Message struct {
	ID           string
	Text         string
	ImageDataURL string
	Provenance   entity.Provenance
}

// Result reports what happened to a message.
type Result struct {
	MessageID    string
	Record       *entity.ExtractionRecord
	OCRUsed      bool
	Deduplicated bool
}

type Processor struct {
	logger    *slog.Logger
	extractor *extract.Extractor
	ocr       *ocr.Client
	store     repository.RecordStore
	dedup     *repository.DedupStore
	notifier  *notify.Publisher
}

func NewProcessor(
	logger *slog.Logger,
	ex *extract.Extractor,
	ocrClient *ocr.Client,
	store repository.RecordStore,
	dedup *repository.DedupStore,
	notifier *notify.Publisher,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:    logger,
		extractor: ex,
		ocr:       ocrClient,
		store:     store,
		dedup:     dedup,
		notifier:  notifier,
	}
}

// ProcessMessage runs the full pipeline for one message. OCR failure on an
// image falls back to the caption text; extraction itself never fails on
// content. Errors come from invalid provenance, empty input, or the
// persistence boundary.
func (p *Processor) ProcessMessage(ctx context.Context, msg Message) (Result, error) {
	res := Result{MessageID: msg.ID}
	if res.MessageID == "" {
		res.MessageID = uuid.NewString()
	}

	if p.dedup != nil {
		seen, err := p.dedup.Seen(ctx, res.MessageID)
		if err != nil {
			return res, fmt.Errorf("dedup check: %w", err)
		}
		if seen {
			p.logger.Info("pipeline.dedup.skip", "message_id", res.MessageID)
			res.Deduplicated = true
			return res, nil
		}
	}

	text := strings.TrimSpace(msg.Text)
	if msg.ImageDataURL != "" && p.ocr.Enabled() {
		ocrText, err := p.ocr.ExtractDataURL(ctx, msg.ImageDataURL)
		if err != nil {
			p.logger.Warn("pipeline.ocr.failed", "message_id", res.MessageID, "error", err)
		} else if ocrText != "" {
			text = extract.Prep(ocrText)
			res.OCRUsed = true
		}
	}
	if text == "" {
		return res, fmt.Errorf("no text to process: OCR empty and no caption")
	}

	rec, err := p.extractor.Extract(text, msg.Provenance)
	if err != nil {
		p.logger.Error("pipeline.extract.rejected", "message_id", res.MessageID, "error", err)
		return res, err
	}
	res.Record = rec

	if err := p.store.Append(ctx, rec); err != nil {
		p.logger.Error("pipeline.append.failed", "message_id", res.MessageID, "error", err)
		return res, fmt.Errorf("append record: %w", err)
	}
	if p.dedup != nil {
		if err := p.dedup.Mark(ctx, res.MessageID); err != nil {
			p.logger.Warn("pipeline.dedup.mark_failed", "message_id", res.MessageID, "error", err)
		}
	}
	p.notifier.RecordAppended(res.MessageID, rec)

	p.logger.Info("pipeline.ok",
		"message_id", res.MessageID,
		"member_id", rec.MemberID,
		"sentiment", rec.Sentiment,
		"ocr_used", res.OCRUsed,
	)
	return res, nil
}
