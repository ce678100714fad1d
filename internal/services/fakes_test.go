package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/musiccompanion/apiserver/internal/store"
	"github.com/musiccompanion/apiserver/types"
)

type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[uuid.UUID]types.User
	creates int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]types.User{}}
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetActiveByID(ctx context.Context, id uuid.UUID) (types.User, error) {
	u, err := f.GetByID(ctx, id)
	if err != nil {
		return types.User{}, err
	}
	if u.IsBanned {
		return types.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return types.User{}, store.ErrConflict
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	f.users[user.ID] = user
	f.creates++
	return user, nil
}

func (f *fakeUserRepo) List(_ context.Context, filter types.UserFilter) ([]types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.User
	for _, u := range f.users {
		if filter.Banned == nil || *filter.Banned == u.IsBanned {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) Ban(_ context.Context, id uuid.UUID, reason *string, bannedBy uuid.UUID) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	now := time.Now().UTC()
	u.IsBanned = true
	u.BanReason = reason
	u.BannedAt = &now
	u.BannedBy = &bannedBy
	f.users[id] = u
	return u, nil
}

func (f *fakeUserRepo) Unban(_ context.Context, id uuid.UUID) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	u.IsBanned = false
	u.BanReason = nil
	u.BannedAt = nil
	u.BannedBy = nil
	f.users[id] = u
	return u, nil
}

func (f *fakeUserRepo) SetAdmin(ctx context.Context, email string, isAdmin bool) (types.User, error) {
	u, err := f.GetByEmail(ctx, email)
	if err != nil {
		return types.User{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u.IsAdmin = isAdmin
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUserRepo) Counts(_ context.Context) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	banned := 0
	for _, u := range f.users {
		if u.IsBanned {
			banned++
		}
	}
	return len(f.users), banned, nil
}

type fakeSongRepo struct {
	songs map[uuid.UUID]types.Song
	err   error
}

func newFakeSongRepo() *fakeSongRepo {
	return &fakeSongRepo{songs: map[uuid.UUID]types.Song{}}
}

func (f *fakeSongRepo) List(_ context.Context, _ types.SongFilter) ([]types.Song, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]types.Song, 0, len(f.songs))
	for _, s := range f.songs {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSongRepo) Get(_ context.Context, id uuid.UUID) (types.Song, error) {
	s, ok := f.songs[id]
	if !ok {
		return types.Song{}, store.ErrNotFound
	}
	return s, nil
}

func (f *fakeSongRepo) Create(_ context.Context, song types.Song) (types.Song, error) {
	if song.ID == uuid.Nil {
		song.ID = uuid.New()
	}
	if song.CreatedAt.IsZero() {
		song.CreatedAt = time.Now().UTC()
	}
	f.songs[song.ID] = song
	return song, nil
}

func (f *fakeSongRepo) Update(_ context.Context, song types.Song) (types.Song, error) {
	if _, ok := f.songs[song.ID]; !ok {
		return types.Song{}, store.ErrNotFound
	}
	song.UpdatedAt = time.Now().UTC()
	f.songs[song.ID] = song
	return song, nil
}

func (f *fakeSongRepo) Delete(_ context.Context, id uuid.UUID) (types.Song, error) {
	s, ok := f.songs[id]
	if !ok {
		return types.Song{}, store.ErrNotFound
	}
	delete(f.songs, id)
	return s, nil
}

func (f *fakeSongRepo) Count(_ context.Context) (int, error) {
	return len(f.songs), nil
}

type fakeVocalRepo struct {
	vocals map[uuid.UUID]types.VocalRecording
}

func newFakeVocalRepo() *fakeVocalRepo {
	return &fakeVocalRepo{vocals: map[uuid.UUID]types.VocalRecording{}}
}

func (f *fakeVocalRepo) List(_ context.Context) ([]types.VocalRecording, error) {
	out := make([]types.VocalRecording, 0, len(f.vocals))
	for _, v := range f.vocals {
		out = append(out, v)
	}
	return out, nil
}

func (f *fakeVocalRepo) Get(_ context.Context, id uuid.UUID) (types.VocalRecording, error) {
	v, ok := f.vocals[id]
	if !ok {
		return types.VocalRecording{}, store.ErrNotFound
	}
	return v, nil
}

func (f *fakeVocalRepo) Create(_ context.Context, vocal types.VocalRecording) (types.VocalRecording, error) {
	if vocal.ID == uuid.Nil {
		vocal.ID = uuid.New()
	}
	if vocal.CreatedAt.IsZero() {
		vocal.CreatedAt = time.Now().UTC()
	}
	f.vocals[vocal.ID] = vocal
	return vocal, nil
}

func (f *fakeVocalRepo) Update(_ context.Context, vocal types.VocalRecording) (types.VocalRecording, error) {
	if _, ok := f.vocals[vocal.ID]; !ok {
		return types.VocalRecording{}, store.ErrNotFound
	}
	f.vocals[vocal.ID] = vocal
	return vocal, nil
}

func (f *fakeVocalRepo) Delete(_ context.Context, id uuid.UUID) (types.VocalRecording, error) {
	v, ok := f.vocals[id]
	if !ok {
		return types.VocalRecording{}, store.ErrNotFound
	}
	delete(f.vocals, id)
	return v, nil
}

func (f *fakeVocalRepo) Count(_ context.Context) (int, error) {
	return len(f.vocals), nil
}

type publishedMessage struct {
	channel string
	data    []byte
}

type fakeBus struct {
	mu       sync.Mutex
	messages []publishedMessage
	err      error
}

func (b *fakeBus) Publish(_ context.Context, channel string, data []byte, _ map[string]string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return "", b.err
	}
	b.messages = append(b.messages, publishedMessage{channel: channel, data: data})
	return uuid.NewString(), nil
}

func (b *fakeBus) channels() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.messages))
	for _, m := range b.messages {
		out = append(out, m.channel)
	}
	return out
}

type fakeObjectStore struct {
	objects map[string][]byte
	types   map[string]string
	failPut bool
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeObjectStore) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	if f.failPut {
		return errors.New("put failed")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[key] = data
	f.types[key] = contentType
	return nil
}

func (f *fakeObjectStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}
