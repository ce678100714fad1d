package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/musiccompanion/apiserver/internal/metrics"
	"github.com/musiccompanion/apiserver/internal/services"
	"github.com/musiccompanion/apiserver/internal/storage"
	"go.uber.org/zap"
)

const (
	maxMediaBytes      = 50 << 20
	maxMultipartMemory = 32 << 20
	formFieldFile      = "file"
	formFieldKind      = "kind"
)

// MediaHandler uploads and streams audio files and cover images.
type MediaHandler struct {
	media   *services.MediaService
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewMediaHandler(media *services.MediaService, m *metrics.Metrics, log *zap.Logger) *MediaHandler {
	return &MediaHandler{media: media, metrics: m, log: log}
}

// MediaRouter registers upload and download routes. Keys are served
// relative to the media prefix: GET /audio/<id>.mp3 reads media/audio/<id>.mp3.
func MediaRouter(r chi.Router, h *MediaHandler, requireAuth func(http.Handler) http.Handler) {
	r.With(requireAuth).Post("/", h.Upload)
	r.Get("/*", h.Download)
}

var errFileTooLarge = fmt.Errorf("uploaded file too large (max %d MiB)", maxMediaBytes>>20)

type uploadedFile struct {
	Filename string
	Data     []byte
}

func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxMediaBytes+(1<<20))
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, errFileTooLarge.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, err := parseUploadFile(r.MultipartForm)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errFileTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, status, err.Error())
		return
	}

	kind := r.FormValue(formFieldKind)
	obj, err := h.media.Upload(r.Context(), kind, file.Filename, file.Data)
	if err != nil {
		writeServiceError(w, r, h.log, err, "media")
		return
	}
	if h.metrics != nil {
		h.metrics.MediaUploadedBytes.WithLabelValues(strings.ToLower(strings.TrimSpace(kind))).Add(float64(obj.Size))
	}
	writeJSON(w, http.StatusCreated, obj)
}

func (h *MediaHandler) Download(w http.ResponseWriter, r *http.Request) {
	key := services.MediaKeyPrefix + chi.URLParam(r, "*")
	body, err := h.media.Open(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			writeError(w, http.StatusNotFound, "media not found")
			return
		}
		writeServiceError(w, r, h.log, err, "media")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", services.ContentTypeFor(key))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	if n, err := io.Copy(w, body); err != nil {
		h.log.Warn("stream media", zap.String("key", key), zap.Int64("written", n), zap.Error(err))
	}
}

func parseUploadFile(form *multipart.Form) (uploadedFile, error) {
	if form == nil {
		return uploadedFile{}, errors.New("missing form data")
	}

	files := form.File[formFieldFile]
	if len(files) == 0 {
		return uploadedFile{}, errors.New("file is required")
	}
	if len(files) > 1 {
		return uploadedFile{}, errors.New("only one file is allowed")
	}

	header := files[0]
	f, err := header.Open()
	if err != nil {
		return uploadedFile{}, fmt.Errorf("failed to read file: %w", err)
	}
	data, err := readFileLimited(f, maxMediaBytes)
	_ = f.Close()
	if err != nil {
		return uploadedFile{}, err
	}
	return uploadedFile{Filename: header.Filename, Data: data}, nil
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(reader, limit+1))
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errFileTooLarge
	}
	return data, nil
}
