package handlers

import (
	"net/http"

	"github.com/musiccompanion/apiserver/internal/services"
	"github.com/musiccompanion/apiserver/types"
	"go.uber.org/zap"
)

type ChordNoteHandler struct {
	notes *services.ChordNoteService
	log   *zap.Logger
}

func NewChordNoteHandler(notes *services.ChordNoteService, log *zap.Logger) *ChordNoteHandler {
	return &ChordNoteHandler{notes: notes, log: log}
}

type ChordNoteCreateRequest struct {
	ChordProgression string  `json:"chordProgression"`
	Position         *int    `json:"position"`
	Notes            *string `json:"notes"`
}

func (h *ChordNoteHandler) ListBySong(w http.ResponseWriter, r *http.Request) {
	songID, err := parseID(r, "songID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	notes, err := h.notes.ListBySong(r.Context(), songID)
	if err != nil {
		writeServiceError(w, r, h.log, err, "song")
		return
	}
	if notes == nil {
		notes = []types.ChordNote{}
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *ChordNoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	songID, err := parseID(r, "songID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req ChordNoteCreateRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	note, err := h.notes.Create(r.Context(), types.ChordNote{
		SongID:           songID,
		ChordProgression: req.ChordProgression,
		Position:         req.Position,
		Notes:            req.Notes,
		CreatedBy:        actorID(r),
	})
	if err != nil {
		writeServiceError(w, r, h.log, err, "song")
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (h *ChordNoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "chordID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	note, err := h.notes.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.log, err, "chord note")
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *ChordNoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "chordID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var update types.ChordNoteUpdate
	if err := decodeJSON(w, r, &update, true); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	note, err := h.notes.Update(r.Context(), id, update)
	if err != nil {
		writeServiceError(w, r, h.log, err, "chord note")
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *ChordNoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "chordID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.notes.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, h.log, err, "chord note")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "chord note deleted"})
}
