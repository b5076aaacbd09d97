package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/florianilch/signbridge/internal/esign"
)

const (
	tagsFailureMessage = "Failed to fetch eSign tags"

	// multipartMemory is how much of a multipart body is kept in memory before spilling to disk.
	multipartMemory = 8 << 20
)

type handlers struct {
	svc            ESignService
	maxUploadBytes int64
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, map[string]string{"status": "ok"}, http.StatusOK)
}

// getESignTags serves GET /zoho/get-esign-tags.
func (h *handlers) getESignTags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	catalog, err := h.svc.ListFieldTypes(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "listing field types failed", "error", err)
		writeJSONError(ctx, w, tagsFailureMessage, http.StatusInternalServerError)
		return
	}

	writeJSON(ctx, w, catalog, http.StatusOK)
}

// submitForESign serves POST /zoho/submit-for-esign with multipart fields "file" and "tags".
func (h *handlers) submitForESign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSONError(ctx, w, "file too large", http.StatusRequestEntityTooLarge)
			return
		}
		slog.WarnContext(ctx, "invalid multipart form", "error", err)
		writeJSONError(ctx, w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(ctx, w, "file is required", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(file)
	if err != nil {
		slog.ErrorContext(ctx, "reading uploaded file failed", "error", err)
		writeJSONError(ctx, w, "invalid file", http.StatusBadRequest)
		return
	}
	if len(content) == 0 {
		writeJSONError(ctx, w, "file is empty", http.StatusBadRequest)
		return
	}

	tags, err := esign.ParseTagSelectors(r.FormValue("tags"))
	if err != nil {
		slog.WarnContext(ctx, "invalid tags", "error", err)
		writeJSONError(ctx, w, "invalid tags", http.StatusBadRequest)
		return
	}

	result, err := h.svc.Submit(ctx, esign.Submission{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
		Tags:        tags,
	})
	if err != nil {
		// Step details are logged by the service
		writeJSONError(ctx, w, esign.SubmissionFailureMessage, http.StatusInternalServerError)
		return
	}

	writeJSON(ctx, w, result, http.StatusOK)
}
