// Entry point for the zaria HTTP service: document intake, processing and
// multi-format export over a chi router.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zariapress/zaria/docproc"
	"github.com/zariapress/zaria/documents"
	"github.com/zariapress/zaria/export"
	"github.com/zariapress/zaria/spine"
	"github.com/zariapress/zaria/store"
	"github.com/zariapress/zaria/template"
	"github.com/zariapress/zaria/webhook"
)

func main() {
	port := env("PORT", "8090")
	dbPath := env("DB_PATH", "db/zaria.db")
	blobDir := env("BLOB_DIR", "data/exports")
	catalogPath := env("TEMPLATE_CATALOG", "")
	logLevel := env("LOG_LEVEL", "info")

	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := store.Open(dbPath, store.WithMkdirAll())
	if err != nil {
		slog.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	catalog := template.NewCatalog()
	if catalogPath != "" {
		if err := catalog.LoadFile(catalogPath); err != nil {
			slog.Error("load template catalog", "path", catalogPath, "error", err)
			os.Exit(1)
		}
		slog.Info("template catalog extended", "path", catalogPath)
	}
	resolver := template.NewResolver(catalog, store.NewTemplateStore(db))

	events := webhook.LogEmitter{Logger: logger}

	docs := documents.NewService(documents.Config{
		Store:  store.NewDocumentStore(db),
		Events: events,
		Logger: logger,
		NewID:  store.NewDocumentID,
	})

	artifacts := store.NewArtifactStore(db)
	exports := export.NewService(export.Config{
		Documents: docs,
		Artifacts: artifacts,
		Blobs:     store.NewFileBlobStore(blobDir),
		Templates: resolver,
		Events:    events,
		Logger:    logger,
		NewID:     store.NewExportID,
	})

	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})

	r.Get("/templates", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, catalog.List())
	})

	r.Route("/documents", func(r chi.Router) {
		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Title      string                   `json:"title"`
				RawText    string                   `json:"rawText"`
				InputType  string                   `json:"inputType"`
				TemplateID string                   `json:"templateId"`
				Spine      spine.Metrics            `json:"spine"`
				Metadata   docproc.ProvidedMetadata `json:"metadata"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, 400, err)
				return
			}
			if req.InputType == "" {
				req.InputType = string(documents.InputRaw)
			}
			doc, err := docs.Create(r.Context(), documents.CreateRequest{
				TenantID:   tenantID(r),
				InputType:  documents.InputType(req.InputType),
				Title:      req.Title,
				RawText:    req.RawText,
				TemplateID: req.TemplateID,
				Spine:      req.Spine,
				Metadata:   req.Metadata,
			})
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, 201, documentView(doc))
		})

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			list, err := docs.List(r.Context(), tenantID(r))
			if err != nil {
				writeServiceError(w, err)
				return
			}
			views := make([]map[string]any, 0, len(list))
			for _, doc := range list {
				views = append(views, documentView(doc))
			}
			writeJSON(w, 200, views)
		})

		r.Get("/{documentID}", func(w http.ResponseWriter, r *http.Request) {
			doc, err := docs.Get(r.Context(), tenantID(r), chi.URLParam(r, "documentID"))
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, 200, documentView(doc))
		})

		r.Post("/{documentID}/process", func(w http.ResponseWriter, r *http.Request) {
			force := r.URL.Query().Get("force") == "true"
			doc, err := docs.Process(r.Context(), tenantID(r), chi.URLParam(r, "documentID"), force)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, 200, documentView(doc))
		})

		r.Put("/{documentID}/spine", func(w http.ResponseWriter, r *http.Request) {
			var metrics spine.Metrics
			if err := json.NewDecoder(r.Body).Decode(&metrics); err != nil {
				writeError(w, 400, err)
				return
			}
			doc, err := docs.UpdateSpine(r.Context(), tenantID(r), chi.URLParam(r, "documentID"), metrics)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, 200, documentView(doc))
		})

		r.Post("/{documentID}/exports", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Format         string         `json:"format"`
				IncludeFormats []string       `json:"includeFormats"`
				Spine          *spine.Metrics `json:"spine"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, 400, err)
				return
			}
			include := make([]export.Format, 0, len(req.IncludeFormats))
			for _, f := range req.IncludeFormats {
				include = append(include, export.Format(f))
			}
			artifact, err := exports.Create(r.Context(), export.Request{
				TenantID:       tenantID(r),
				DocumentID:     chi.URLParam(r, "documentID"),
				Format:         export.Format(req.Format),
				IncludeFormats: include,
				Spine:          req.Spine,
			})
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, 201, artifactView(artifact))
		})

		r.Get("/{documentID}/exports", func(w http.ResponseWriter, r *http.Request) {
			list, err := artifacts.ListArtifacts(r.Context(), tenantID(r), chi.URLParam(r, "documentID"))
			if err != nil {
				writeServiceError(w, err)
				return
			}
			views := make([]map[string]any, 0, len(list))
			for _, a := range list {
				views = append(views, artifactView(a))
			}
			writeJSON(w, 200, views)
		})
	})

	r.Route("/exports", func(r chi.Router) {
		r.Get("/{exportID}", func(w http.ResponseWriter, r *http.Request) {
			artifact, err := exports.Get(r.Context(), tenantID(r), chi.URLParam(r, "exportID"))
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, 200, artifactView(artifact))
		})

		r.Get("/{exportID}/file", func(w http.ResponseWriter, r *http.Request) {
			artifact, data, err := exports.File(r.Context(), tenantID(r), chi.URLParam(r, "exportID"))
			if err != nil {
				writeServiceError(w, err)
				return
			}
			w.Header().Set("Content-Type", artifact.MimeType)
			w.Header().Set("Content-Disposition", `attachment; filename="`+artifact.Filename+`"`)
			w.Header().Set("Content-Length", strconv.Itoa(len(data)))
			w.WriteHeader(200)
			w.Write(data)
		})
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}

// tenantID reads the tenant scope. A gateway in front of the service is
// expected to set the header after authentication.
func tenantID(r *http.Request) string {
	if t := r.Header.Get("X-Tenant-ID"); t != "" {
		return t
	}
	return "default"
}

func documentView(doc *documents.Document) map[string]any {
	view := map[string]any{
		"id":         doc.ID,
		"title":      doc.Title,
		"inputType":  string(doc.InputType),
		"templateId": doc.TemplateID,
		"spine":      doc.Spine,
		"spineScore": spine.Score(doc.Spine),
		"createdAt":  doc.CreatedAt,
		"updatedAt":  doc.UpdatedAt,
	}
	if doc.Processed != nil {
		view["metadata"] = doc.Processed.Metadata
		view["toc"] = doc.Processed.Toc
		view["layout"] = doc.Processed.Layout
		view["processedAt"] = doc.ProcessedAt
	}
	return view
}

func artifactView(a *export.Artifact) map[string]any {
	view := map[string]any{
		"id":         a.ID,
		"documentId": a.DocumentID,
		"format":     string(a.Format),
		"status":     string(a.Status),
		"createdAt":  a.CreatedAt,
		"updatedAt":  a.UpdatedAt,
	}
	if a.Status == export.StatusSuccess {
		view["filename"] = a.Filename
		view["mimeType"] = a.MimeType
		view["bytes"] = a.Bytes
		view["sha256"] = a.SHA256
	}
	if a.Error != "" {
		view["error"] = a.Error
	}
	if a.Manifest != nil {
		view["manifest"] = a.Manifest
	}
	return view
}

// writeServiceError maps service sentinels to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, documents.ErrValidation), errors.Is(err, export.ErrValidation):
		writeError(w, 400, err)
	case errors.Is(err, documents.ErrNotFound), errors.Is(err, export.ErrNotFound),
		errors.Is(err, template.ErrNotFound):
		writeError(w, 404, err)
	case errors.Is(err, export.ErrNotProcessed):
		writeError(w, 409, err)
	default:
		writeError(w, 500, err)
	}
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
