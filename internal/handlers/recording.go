package handlers

import (
	"net/http"

	"github.com/musiccompanion/apiserver/internal/services"
	"github.com/musiccompanion/apiserver/types"
	"go.uber.org/zap"
)

// RecordingHandler serves practice recordings nested under a song and
// addressed directly by id.
type RecordingHandler struct {
	recordings *services.RecordingService
	log        *zap.Logger
}

func NewRecordingHandler(recordings *services.RecordingService, log *zap.Logger) *RecordingHandler {
	return &RecordingHandler{recordings: recordings, log: log}
}

type RecordingCreateRequest struct {
	Title     string  `json:"title"`
	Type      string  `json:"type"`
	AudioFile string  `json:"audioFile"`
	Notes     *string `json:"notes"`
}

func (h *RecordingHandler) ListBySong(w http.ResponseWriter, r *http.Request) {
	songID, err := parseID(r, "songID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	recs, err := h.recordings.ListBySong(r.Context(), songID)
	if err != nil {
		writeServiceError(w, r, h.log, err, "song")
		return
	}
	if recs == nil {
		recs = []types.Recording{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *RecordingHandler) Create(w http.ResponseWriter, r *http.Request) {
	songID, err := parseID(r, "songID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req RecordingCreateRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec, err := h.recordings.Create(r.Context(), types.Recording{
		SongID:    songID,
		Title:     req.Title,
		Type:      req.Type,
		AudioFile: req.AudioFile,
		Notes:     req.Notes,
		CreatedBy: actorID(r),
	})
	if err != nil {
		writeServiceError(w, r, h.log, err, "song")
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *RecordingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "recordingID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec, err := h.recordings.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.log, err, "recording")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *RecordingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "recordingID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var update types.RecordingUpdate
	if err := decodeJSON(w, r, &update, true); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec, err := h.recordings.Update(r.Context(), id, update)
	if err != nil {
		writeServiceError(w, r, h.log, err, "recording")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *RecordingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "recordingID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.recordings.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, h.log, err, "recording")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "recording deleted"})
}
