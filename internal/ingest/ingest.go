// Package ingest feeds dropped scan files (eligibility screenshots, text
// exports) into the extraction pipeline. It is a thin text-acquisition
// collaborator: all interpretation happens downstream.
package ingest

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/openelig/eligibility-tracker/constants"
	"github.com/openelig/eligibility-tracker/internal/entity"
	"github.com/openelig/eligibility-tracker/internal/pipeline"
)

// maxFileSize bounds how much of a dropped file is read. Scans larger than
// this are almost certainly not eligibility screenshots.
const maxFileSize = 16 << 20

type Ingestor struct {
	processor *pipeline.Processor
	extractor string // extracted_by identity for file-sourced records
	logger    *slog.Logger
}

func NewIngestor(proc *pipeline.Processor, extractorID string, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{processor: proc, extractor: extractorID, logger: logger}
}

// Run consumes watcher events until ctx is done. Per-file failures are
// logged and skipped; the loop never stops on one bad file.
func (i *Ingestor) Run(ctx context.Context, paths <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-paths:
			if !ok {
				return
			}
			if err := i.IngestFile(ctx, path); err != nil {
				i.logger.Warn("ingest.file.failed", "path", path, "error", err)
			}
		}
	}
}

// IngestFile turns one dropped file into a pipeline message. Text files feed
// the extractor directly; images ride the OCR path as data URLs.
func (i *Ingestor) IngestFile(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	if info.Size() > maxFileSize {
		return fmt.Errorf("file too large: %d bytes", info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	ext := constants.NormalizeExt(filepath.Ext(path))
	msg := pipeline.Message{
		// path + mtime identifies a drop; rewriting the file reprocesses it
		ID: fmt.Sprintf("file:%s:%d", path, info.ModTime().Unix()),
		Provenance: entity.Provenance{
			UserIdentifier: "drop-folder",
			ExtractedBy:    i.extractor,
			CapturedAt:     time.Now(),
		},
	}
	if constants.IsImageExt(ext) {
		msg.ImageDataURL = "data:image/" + ext + ";base64," + base64.StdEncoding.EncodeToString(data)
	} else {
		msg.Text = string(data)
	}

	res, err := i.processor.ProcessMessage(ctx, msg)
	if err != nil {
		return err
	}
	if res.Deduplicated {
		i.logger.Info("ingest.file.duplicate", "path", path)
		return nil
	}
	i.logger.Info("ingest.file.ok", "path", path, "ocr_used", res.OCRUsed)
	return nil
}
