package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/Lllllllleong/examsolver/internal/models"
	"github.com/Lllllllleong/examsolver/internal/services"
	"github.com/Lllllllleong/examsolver/internal/session"
)

//go:embed web
var embeddedWeb embed.FS

// genericFailure is the only thing a user sees for a service-side failure.
const genericFailure = "Error generating solution. Check logs for details."

// Server serves the exam-solver page and its JSON API.
type Server struct {
	store     *session.Store
	solver    session.Solver
	paginator *services.Paginator
	config    Config
	static    http.Handler
}

// New wires a Server. The solver is the only component that talks to the network.
func New(solver session.Solver, paginator *services.Paginator, config Config) (*Server, error) {
	if solver == nil {
		return nil, errors.New("solver required")
	}
	if paginator == nil {
		paginator = services.NewPaginator(services.DefaultGeometry())
	}
	sub, err := fs.Sub(embeddedWeb, "web")
	if err != nil {
		return nil, err
	}
	return &Server{
		store:     session.NewStore(),
		solver:    solver,
		paginator: paginator,
		config:    config,
		static:    http.FileServer(http.FS(sub)),
	}, nil
}

// Store exposes the session store, for expiry and tests.
func (s *Server) Store() *session.Store { return s.store }

// Routes returns the HTTP handler for the whole application.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("PUT /api/sessions/{id}/credential", s.handleCredential)
	mux.HandleFunc("POST /api/sessions/{id}/document", s.handleDocument)
	mux.HandleFunc("POST /api/sessions/{id}/generate", s.handleGenerate)
	mux.HandleFunc("GET /api/sessions/{id}/download", s.handleDownload)
	mux.Handle("GET /", s.static)
	return logMiddleware(mux)
}

// RunSweeper expires idle sessions until ctx is done.
func (s *Server) RunSweeper(ctx context.Context) {
	interval := s.config.SessionIdleTTL / 4
	if interval <= 0 {
		slog.Warn("Session sweeper disabled.", "sessionIdleTtl", s.config.SessionIdleTTL.String())
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.store.Sweep(s.config.SessionIdleTTL)
		}
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id := s.store.Create()
	slog.Info("Session created.", "sessionId", id)
	writeJSON(w, http.StatusCreated, models.CreateSessionResponse{SessionID: id})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	st, err := s.store.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st.View(id))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.store.Delete(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCredential(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req models.CredentialRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil {
		writeNotice(w, http.StatusBadRequest, "could not parse JSON")
		return
	}
	st, err := s.store.SetCredential(id, req.APIKey)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st.View(id))
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	logCtx := slog.With("sessionId", id)
	if _, err := s.store.Get(id); err != nil {
		writeError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	doc, err := s.readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeNotice(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds the %d byte upload limit", s.config.MaxUploadBytes))
			return
		}
		logCtx.Warn("Rejected upload.", "error", err)
		writeError(w, err)
		return
	}

	st, err := s.store.SelectDocument(id, doc)
	if err != nil {
		writeError(w, err)
		return
	}
	logCtx.Info("Document selected.", "document", doc.Name, "sizeBytes", doc.Size, "pageCount", doc.PageCount)
	writeJSON(w, http.StatusOK, st.View(id))
}

// readUpload accepts a multipart "file" field or a JSON data URL. The declared
// type is checked before the file's bytes are taken.
func (s *Server) readUpload(r *http.Request) (*models.UploadedDocument, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var (
		name, mediaType string
		data            []byte
	)
	switch ct {
	case "multipart/form-data":
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errBadUpload, err)
		}
		defer file.Close()
		name, mediaType = header.Filename, header.Header.Get("Content-Type")
		if err := services.ValidateMediaType(mediaType); err != nil {
			return nil, err
		}
		if data, err = io.ReadAll(file); err != nil {
			return nil, fmt.Errorf("failed to read uploaded file: %w", err)
		}
	case "application/json":
		var req models.DocumentUploadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, fmt.Errorf("%w: %w", errBadUpload, err)
		}
		name, mediaType = req.Name, req.Type
		if err := services.ValidateMediaType(mediaType); err != nil {
			return nil, err
		}
		decoded, err := services.DecodeDataURL(req.DataURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errBadUpload, err)
		}
		data = decoded
	default:
		return nil, fmt.Errorf("%w: unsupported content type %q", errBadUpload, ct)
	}

	doc := &models.UploadedDocument{
		Name:      name,
		MediaType: mediaType,
		Size:      int64(len(data)),
		Source:    models.BytesSource(data),
	}
	if pages, err := services.InspectPDF(data); err != nil {
		slog.Warn("Could not inspect uploaded PDF; sending it as-is.", "document", name, "error", err)
	} else {
		doc.PageCount = pages
	}
	return doc, nil
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	st, err := s.store.Generate(r.Context(), id, s.solver)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st.View(id))
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	st, err := s.store.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !st.CanDownload() {
		writeNotice(w, http.StatusConflict, "no solution to download yet")
		return
	}

	out, err := s.paginator.Render(st.Result)
	if err != nil {
		slog.Error("Failed to render download.", "sessionId", id, "error", err)
		writeNotice(w, http.StatusInternalServerError, "could not build the PDF")
		return
	}
	w.Header().Set("Content-Type", models.PDFMediaType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": out.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out.Data); err != nil {
		slog.Error("Failed to write download.", "sessionId", id, "error", err)
	}
}
