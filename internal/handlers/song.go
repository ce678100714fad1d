package handlers

import (
	"net/http"
	"strings"

	"github.com/musiccompanion/apiserver/internal/services"
	"github.com/musiccompanion/apiserver/types"
	"go.uber.org/zap"
)

// SongHandler serves songs and the combined songs + vocals feed.
type SongHandler struct {
	songs *services.SongService
	feed  *services.FeedService
	log   *zap.Logger
}

func NewSongHandler(songs *services.SongService, feed *services.FeedService, log *zap.Logger) *SongHandler {
	return &SongHandler{songs: songs, feed: feed, log: log}
}

type SongCreateRequest struct {
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	CoverImage string  `json:"coverImage"`
	AudioFile  string  `json:"audioFile"`
	Duration   *int    `json:"duration"`
	Genre      *string `json:"genre"`
}

// ListSongs supports ?q= (title or artist substring) and ?genre=.
func (h *SongHandler) ListSongs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	songs, err := h.songs.List(r.Context(), types.SongFilter{
		Query: strings.TrimSpace(query.Get("q")),
		Genre: strings.TrimSpace(query.Get("genre")),
	})
	if err != nil {
		writeServiceError(w, r, h.log, err, "song")
		return
	}
	if songs == nil {
		songs = []types.Song{}
	}
	writeJSON(w, http.StatusOK, songs)
}

// Feed lists songs and vocal recordings together, newest first.
func (h *SongHandler) Feed(w http.ResponseWriter, r *http.Request) {
	items, err := h.feed.All(r.Context())
	if err != nil {
		writeServiceError(w, r, h.log, err, "feed")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *SongHandler) GetSong(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "songID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	song, err := h.songs.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.log, err, "song")
		return
	}
	writeJSON(w, http.StatusOK, song)
}

func (h *SongHandler) CreateSong(w http.ResponseWriter, r *http.Request) {
	var req SongCreateRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	song, err := h.songs.Create(r.Context(), types.Song{
		Title:      req.Title,
		Artist:     req.Artist,
		CoverImage: req.CoverImage,
		AudioFile:  req.AudioFile,
		Duration:   req.Duration,
		Genre:      req.Genre,
		CreatedBy:  actorID(r),
	})
	if err != nil {
		writeServiceError(w, r, h.log, err, "song")
		return
	}
	writeJSON(w, http.StatusCreated, song)
}

func (h *SongHandler) UpdateSong(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "songID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var update types.SongUpdate
	if err := decodeJSON(w, r, &update, true); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	song, err := h.songs.Update(r.Context(), id, update)
	if err != nil {
		writeServiceError(w, r, h.log, err, "song")
		return
	}
	writeJSON(w, http.StatusOK, song)
}

func (h *SongHandler) DeleteSong(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "songID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.songs.Delete(r.Context(), id, actorID(r)); err != nil {
		writeServiceError(w, r, h.log, err, "song")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "song deleted"})
}
