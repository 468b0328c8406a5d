// Package server exposes the chat and REST surface: a websocket chat room
// whose messages feed the extraction pipeline, plus JSON/XLSX endpoints over
// the record store.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/openelig/eligibility-tracker/internal/common"
	"github.com/openelig/eligibility-tracker/internal/entity"
	"github.com/openelig/eligibility-tracker/internal/export"
	"github.com/openelig/eligibility-tracker/internal/pipeline"
	"github.com/openelig/eligibility-tracker/internal/repository"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1 << 20,
	WriteBufferSize: 1 << 20,
	// chat clients are served from anywhere (screenshots get pasted from
	// whatever origin the ops tooling runs on)
	CheckOrigin: func(*http.Request) bool { return true },
}

type Server struct {
	router      *chi.Mux
	addr        string
	hub         *Hub
	processor   *pipeline.Processor
	store       repository.RecordStore
	exporter    *export.Service
	extractorID string
	logger      *slog.Logger
}

func NewServer(
	addr string,
	hub *Hub,
	proc *pipeline.Processor,
	store repository.RecordStore,
	exporter *export.Service,
	extractorID string,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:      router,
		addr:        addr,
		hub:         hub,
		processor:   proc,
		store:       store,
		exporter:    exporter,
		extractorID: extractorID,
		logger:      logger,
	}

	router.Get("/healthz", s.health)
	router.Get("/ws", s.websocket)
	router.Post("/v1/messages", s.submitMessage)
	router.Get("/v1/records", s.listRecords)
	router.Get("/v1/records/export", s.exportRecords)

	return s
}

// Serve blocks until the listener fails or ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	s.logger.Info("http server starting", "addr", s.addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// submitRequest is the REST ingestion payload. Image is a base64 data URL.
type submitRequest struct {
	MessageID      string `json:"message_id,omitempty"`
	Text           string `json:"text,omitempty"`
	Image          string `json:"image,omitempty"`
	UserIdentifier string `json:"user_identifier"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type submitResponse struct {
	MessageID    string                   `json:"message_id"`
	Deduplicated bool                     `json:"deduplicated"`
	OCRUsed      bool                     `json:"ocr_used"`
	Record       *entity.ExtractionRecord `json:"record,omitempty"`
}

func (s *Server) submitMessage(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.BadRequest(w, "invalid JSON body")
		return
	}
	if req.Text == "" && req.Image == "" {
		common.BadRequest(w, "text or image is required")
		return
	}
	if req.UserIdentifier == "" {
		common.BadRequest(w, "user_identifier is required")
		return
	}

	msg := pipeline.Message{
		ID:           req.MessageID,
		Text:         req.Text,
		ImageDataURL: req.Image,
		Provenance: entity.Provenance{
			UserIdentifier: req.UserIdentifier,
			ExtractedBy:    s.extractorID,
			ConversationID: req.ConversationID,
			CapturedAt:     time.Now(),
		},
	}
	res, err := s.processor.ProcessMessage(r.Context(), msg)
	if err != nil {
		common.InternalError(w, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(submitResponse{
		MessageID:    res.MessageID,
		Deduplicated: res.Deduplicated,
		OCRUsed:      res.OCRUsed,
		Record:       res.Record,
	})
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateWindow(r)
	if err != nil {
		common.BadRequest(w, err.Error())
		return
	}
	recs, err := s.store.List(r.Context(), from, to)
	if err != nil {
		s.logger.Error("list records failed", "error", err)
		common.InternalError(w, "list records failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{"records": recs, "count": len(recs)})
}

func (s *Server) exportRecords(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateWindow(r)
	if err != nil {
		common.BadRequest(w, err.Error())
		return
	}
	data, err := s.exporter.ExportXLSX(r.Context(), from, to)
	if err != nil {
		s.logger.Error("export failed", "error", err)
		common.InternalError(w, "export failed")
		return
	}
	filename := fmt.Sprintf("extraction_records_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func dateWindow(r *http.Request) (from, to *time.Time, err error) {
	parse := func(key string) (*time.Time, error) {
		v := r.URL.Query().Get(key)
		if v == "" {
			return nil, nil
		}
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s date %q", key, v)
		}
		return &t, nil
	}
	if from, err = parse("from"); err != nil {
		return nil, nil, err
	}
	if to, err = parse("to"); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

// websocket upgrades a chat client. Frames of type "message" and "image" are
// broadcast to the room and handed to the pipeline in the background; the
// sender gets a notification frame when processing finishes.
func (s *Server) websocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("ws upgrade failed", "error", err)
		return
	}
	s.hub.Register(conn)
	defer s.hub.Unregister(conn)

	for {
		var msg ChatMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type != "message" && msg.Type != "image" {
			continue
		}
		s.hub.Broadcast(msg)

		text := msg.Text
		if msg.Type == "image" {
			// image frames carry the filename as text; don't extract from it
			text = ""
		}
		if text == "" && msg.Image == "" {
			continue
		}
		go s.processChat(text, msg.Image, msg.User)
	}
}

func (s *Server) processChat(text, image, user string) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	if user == "" {
		user = "chat"
	}
	res, err := s.processor.ProcessMessage(ctx, pipeline.Message{
		ID:           uuid.NewString(),
		Text:         text,
		ImageDataURL: image,
		Provenance: entity.Provenance{
			UserIdentifier: user,
			ExtractedBy:    s.extractorID,
			CapturedAt:     time.Now(),
		},
	})
	if err != nil {
		s.hub.Notify(ctx, "extraction failed: "+err.Error(), "error")
		return
	}
	note := "data extracted and saved"
	if res.OCRUsed {
		note += " (from image)"
	}
	if res.Deduplicated {
		note = "message already processed"
	}
	s.hub.Notify(ctx, note, "success")
}
