package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/musiccompanion/apiserver/internal/services"
	"github.com/musiccompanion/apiserver/types"
	"go.uber.org/zap"
)

type VocalRecordingHandler struct {
	vocals *services.VocalRecordingService
	log    *zap.Logger
}

func NewVocalRecordingHandler(vocals *services.VocalRecordingService, log *zap.Logger) *VocalRecordingHandler {
	return &VocalRecordingHandler{vocals: vocals, log: log}
}

type VocalRecordingCreateRequest struct {
	Title     string     `json:"title"`
	AudioFile string     `json:"audioFile"`
	Duration  *int       `json:"duration"`
	Notes     *string    `json:"notes"`
	SongID    *uuid.UUID `json:"songId"`
}

func (h *VocalRecordingHandler) List(w http.ResponseWriter, r *http.Request) {
	vocals, err := h.vocals.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.log, err, "vocal recording")
		return
	}
	if vocals == nil {
		vocals = []types.VocalRecording{}
	}
	writeJSON(w, http.StatusOK, vocals)
}

func (h *VocalRecordingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "vocalID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	vocal, err := h.vocals.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.log, err, "vocal recording")
		return
	}
	writeJSON(w, http.StatusOK, vocal)
}

func (h *VocalRecordingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req VocalRecordingCreateRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	vocal, err := h.vocals.Create(r.Context(), types.VocalRecording{
		Title:     req.Title,
		AudioFile: req.AudioFile,
		Duration:  req.Duration,
		Notes:     req.Notes,
		SongID:    req.SongID,
		CreatedBy: actorID(r),
	})
	if err != nil {
		writeServiceError(w, r, h.log, err, "vocal recording")
		return
	}
	writeJSON(w, http.StatusCreated, vocal)
}

func (h *VocalRecordingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "vocalID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var update types.VocalRecordingUpdate
	if err := decodeJSON(w, r, &update, true); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	vocal, err := h.vocals.Update(r.Context(), id, update)
	if err != nil {
		writeServiceError(w, r, h.log, err, "vocal recording")
		return
	}
	writeJSON(w, http.StatusOK, vocal)
}

func (h *VocalRecordingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "vocalID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.vocals.Delete(r.Context(), id, actorID(r)); err != nil {
		writeServiceError(w, r, h.log, err, "vocal recording")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "vocal recording deleted"})
}
