package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedItemMarshalJSONAddsType(t *testing.T) {
	id := uuid.New()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	item := FeedItem{
		Type: FeedTypeVocal,
		Vocal: &VocalRecording{
			ID:        id,
			Title:     "Warmup",
			AudioFile: "take.wav",
			CreatedAt: created,
		},
	}

	raw, err := json.Marshal(item)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "vocal", decoded["type"])
	assert.Equal(t, id.String(), decoded["id"])
	assert.Equal(t, "Warmup", decoded["title"])
	assert.Equal(t, created, item.CreatedAt())
}

func TestUserPasswordHashNeverSerialized(t *testing.T) {
	raw, err := json.Marshal(User{Email: "a@b.c", PasswordHash: "secret-hash"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-hash")
	assert.NotContains(t, string(raw), "password")
}

func TestSongFormattedDuration(t *testing.T) {
	d := 205
	assert.Equal(t, "3m 25s", Song{Duration: &d}.FormattedDuration())
	assert.Equal(t, "", Song{}.FormattedDuration())
}

func TestSongUpdateApplyOnlyTouchesSetFields(t *testing.T) {
	title := "New"
	song := Song{Title: "Old", Artist: "Band", AudioFile: "a.mp3"}

	updated := SongUpdate{Title: &title}.Apply(song)

	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "Band", updated.Artist)
	assert.Equal(t, "a.mp3", updated.AudioFile)
}
