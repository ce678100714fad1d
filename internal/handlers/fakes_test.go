package handlers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/musiccompanion/apiserver/internal/store"
	"github.com/musiccompanion/apiserver/types"
)

// memUsers is an in-memory services.UserRepository.
type memUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]types.User
}

func newMemUsers() *memUsers { return &memUsers{users: map[uuid.UUID]types.User{}} }

func (m *memUsers) GetByID(_ context.Context, id uuid.UUID) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) GetActiveByID(ctx context.Context, id uuid.UUID) (types.User, error) {
	u, err := m.GetByID(ctx, id)
	if err == nil && u.IsBanned {
		return types.User{}, store.ErrNotFound
	}
	return u, err
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *memUsers) Create(_ context.Context, user types.User) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return types.User{}, store.ErrConflict
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID] = user
	return user, nil
}

func (m *memUsers) List(_ context.Context, filter types.UserFilter) ([]types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.User
	for _, u := range m.users {
		if filter.Banned == nil || *filter.Banned == u.IsBanned {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memUsers) update(id uuid.UUID, fn func(u *types.User)) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now().UTC()
	m.users[id] = u
	return u, nil
}

func (m *memUsers) Ban(_ context.Context, id uuid.UUID, reason *string, bannedBy uuid.UUID) (types.User, error) {
	return m.update(id, func(u *types.User) {
		now := time.Now().UTC()
		u.IsBanned = true
		u.BanReason = reason
		u.BannedAt = &now
		u.BannedBy = &bannedBy
	})
}

func (m *memUsers) Unban(_ context.Context, id uuid.UUID) (types.User, error) {
	return m.update(id, func(u *types.User) {
		u.IsBanned = false
		u.BanReason = nil
		u.BannedAt = nil
		u.BannedBy = nil
	})
}

func (m *memUsers) SetAdmin(ctx context.Context, email string, isAdmin bool) (types.User, error) {
	u, err := m.GetByEmail(ctx, email)
	if err != nil {
		return types.User{}, err
	}
	return m.update(u.ID, func(u *types.User) { u.IsAdmin = isAdmin })
}

func (m *memUsers) Counts(_ context.Context) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	banned := 0
	for _, u := range m.users {
		if u.IsBanned {
			banned++
		}
	}
	return len(m.users), banned, nil
}

func (m *memUsers) isBanned(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id].IsBanned
}

func (m *memUsers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// memSongs is an in-memory services.SongRepository.
type memSongs struct {
	mu    sync.Mutex
	songs map[uuid.UUID]types.Song
}

func newMemSongs() *memSongs { return &memSongs{songs: map[uuid.UUID]types.Song{}} }

func (m *memSongs) List(_ context.Context, filter types.SongFilter) ([]types.Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.Song
	for _, s := range m.songs {
		if filter.Genre != "" && (s.Genre == nil || *s.Genre != filter.Genre) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memSongs) Get(_ context.Context, id uuid.UUID) (types.Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.songs[id]
	if !ok {
		return types.Song{}, store.ErrNotFound
	}
	return s, nil
}

func (m *memSongs) Create(_ context.Context, song types.Song) (types.Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	song.ID = uuid.New()
	if song.CreatedAt.IsZero() {
		song.CreatedAt = time.Now().UTC()
	}
	song.UpdatedAt = song.CreatedAt
	m.songs[song.ID] = song
	return song, nil
}

func (m *memSongs) Update(_ context.Context, song types.Song) (types.Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.songs[song.ID]; !ok {
		return types.Song{}, store.ErrNotFound
	}
	song.UpdatedAt = time.Now().UTC()
	m.songs[song.ID] = song
	return song, nil
}

func (m *memSongs) Delete(_ context.Context, id uuid.UUID) (types.Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.songs[id]
	if !ok {
		return types.Song{}, store.ErrNotFound
	}
	delete(m.songs, id)
	return s, nil
}

func (m *memSongs) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.songs), nil
}

func (m *memSongs) CountByMediaKey(_ context.Context, key string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.songs {
		if s.AudioFile == key || s.CoverImage == key {
			n++
		}
	}
	return n, nil
}

// memVocals is an in-memory services.VocalRecordingRepository.
type memVocals struct {
	mu     sync.Mutex
	vocals map[uuid.UUID]types.VocalRecording
}

func newMemVocals() *memVocals { return &memVocals{vocals: map[uuid.UUID]types.VocalRecording{}} }

func (m *memVocals) List(_ context.Context) ([]types.VocalRecording, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.VocalRecording
	for _, v := range m.vocals {
		out = append(out, v)
	}
	return out, nil
}

func (m *memVocals) Get(_ context.Context, id uuid.UUID) (types.VocalRecording, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vocals[id]
	if !ok {
		return types.VocalRecording{}, store.ErrNotFound
	}
	return v, nil
}

func (m *memVocals) Create(_ context.Context, vocal types.VocalRecording) (types.VocalRecording, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vocal.ID = uuid.New()
	if vocal.CreatedAt.IsZero() {
		vocal.CreatedAt = time.Now().UTC()
	}
	vocal.UpdatedAt = vocal.CreatedAt
	m.vocals[vocal.ID] = vocal
	return vocal, nil
}

func (m *memVocals) Update(_ context.Context, vocal types.VocalRecording) (types.VocalRecording, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vocals[vocal.ID]; !ok {
		return types.VocalRecording{}, store.ErrNotFound
	}
	m.vocals[vocal.ID] = vocal
	return vocal, nil
}

func (m *memVocals) Delete(_ context.Context, id uuid.UUID) (types.VocalRecording, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vocals[id]
	if !ok {
		return types.VocalRecording{}, store.ErrNotFound
	}
	delete(m.vocals, id)
	return v, nil
}

func (m *memVocals) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.vocals), nil
}

func (m *memVocals) CountByMediaKey(_ context.Context, key string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, v := range m.vocals {
		if v.AudioFile == key {
			n++
		}
	}
	return n, nil
}

// memRecordings is an in-memory services.RecordingRepository.
type memRecordings struct {
	mu   sync.Mutex
	recs map[uuid.UUID]types.Recording
}

func newMemRecordings() *memRecordings { return &memRecordings{recs: map[uuid.UUID]types.Recording{}} }

func (m *memRecordings) ListBySong(_ context.Context, songID uuid.UUID) ([]types.Recording, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.Recording
	for _, r := range m.recs {
		if r.SongID == songID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRecordings) Get(_ context.Context, id uuid.UUID) (types.Recording, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recs[id]
	if !ok {
		return types.Recording{}, store.ErrNotFound
	}
	return r, nil
}

func (m *memRecordings) Create(_ context.Context, rec types.Recording) (types.Recording, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = uuid.New()
	rec.CreatedAt = time.Now().UTC()
	rec.UpdatedAt = rec.CreatedAt
	m.recs[rec.ID] = rec
	return rec, nil
}

func (m *memRecordings) Update(_ context.Context, rec types.Recording) (types.Recording, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recs[rec.ID]; !ok {
		return types.Recording{}, store.ErrNotFound
	}
	m.recs[rec.ID] = rec
	return rec, nil
}

func (m *memRecordings) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recs[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.recs, id)
	return nil
}

// memChordNotes is an in-memory services.ChordNoteRepository.
type memChordNotes struct {
	mu    sync.Mutex
	notes map[uuid.UUID]types.ChordNote
}

func newMemChordNotes() *memChordNotes { return &memChordNotes{notes: map[uuid.UUID]types.ChordNote{}} }

func (m *memChordNotes) ListBySong(_ context.Context, songID uuid.UUID) ([]types.ChordNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.ChordNote
	for _, n := range m.notes {
		if n.SongID == songID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memChordNotes) Get(_ context.Context, id uuid.UUID) (types.ChordNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok {
		return types.ChordNote{}, store.ErrNotFound
	}
	return n, nil
}

func (m *memChordNotes) Create(_ context.Context, note types.ChordNote) (types.ChordNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	note.ID = uuid.New()
	note.CreatedAt = time.Now().UTC()
	note.UpdatedAt = note.CreatedAt
	m.notes[note.ID] = note
	return note, nil
}

func (m *memChordNotes) Update(_ context.Context, note types.ChordNote) (types.ChordNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notes[note.ID]; !ok {
		return types.ChordNote{}, store.ErrNotFound
	}
	m.notes[note.ID] = note
	return note, nil
}

func (m *memChordNotes) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notes[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.notes, id)
	return nil
}
