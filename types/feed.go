package types

import (
	"encoding/json"
	"time"
)

// Feed item origins.
const (
	FeedTypeSong  = "song"
	FeedTypeVocal = "vocal"
)

// FeedItem is one entry of the combined songs + vocal recordings listing.
// Exactly one of Song and Vocal is set. It serializes as the underlying
// record with an extra "type" field.
type FeedItem struct {
	Type  string
	Song  *Song
	Vocal *VocalRecording
}

// CreatedAt returns the creation time of the underlying record.
func (f FeedItem) CreatedAt() time.Time {
	if f.Song != nil {
		return f.Song.CreatedAt
	}
	if f.Vocal != nil {
		return f.Vocal.CreatedAt
	}
	return time.Time{}
}

func (f FeedItem) MarshalJSON() ([]byte, error) {
	var record any
	switch {
	case f.Song != nil:
		record = f.Song
	case f.Vocal != nil:
		record = f.Vocal
	default:
		return json.Marshal(map[string]string{"type": f.Type})
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	typ, err := json.Marshal(f.Type)
	if err != nil {
		return nil, err
	}
	fields["type"] = typ
	return json.Marshal(fields)
}
