package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/musiccompanion/apiserver/internal/storage"
)

// Media kinds accepted by Upload.
const (
	MediaKindAudio = "audio"
	MediaKindCover = "cover"
)

// MediaKeyPrefix prefixes every key written by MediaService. References
// without it (e.g. the default cover) are never touched in storage.
const MediaKeyPrefix = "media/"

var mediaContentTypes = map[string]map[string]string{
	MediaKindAudio: {
		".mp3": "audio/mpeg",
		".wav": "audio/wav",
		".ogg": "audio/ogg",
	},
	MediaKindCover: {
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".webp": "image/webp",
	},
}

// ObjectStore is the object storage surface used for media.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// MediaObject describes a stored upload.
type MediaObject struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	SHA256      string `json:"sha256"`
}

// MediaReferenceCounter reports how many live records point at a key.
type MediaReferenceCounter interface {
	CountByMediaKey(ctx context.Context, key string) (int, error)
}

// MediaService stores uploaded audio files and cover images.
type MediaService struct {
	store ObjectStore
	refs  []MediaReferenceCounter
}

func NewMediaService(store ObjectStore) *MediaService {
	return &MediaService{store: store}
}

// WithReferences makes DeleteKeys keep any key that one of refs still
// counts as in use.
func (s *MediaService) WithReferences(refs ...MediaReferenceCounter) *MediaService {
	s.refs = append(s.refs, refs...)
	return s
}

// Upload validates the file extension against kind and writes the data
// under a fresh key.
func (s *MediaService) Upload(ctx context.Context, kind, filename string, data []byte) (MediaObject, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	allowed, ok := mediaContentTypes[kind]
	if !ok {
		return MediaObject{}, invalid("kind", "must be audio or cover")
	}
	if len(data) == 0 {
		return MediaObject{}, invalid("file", "is empty")
	}

	ext := strings.ToLower(path.Ext(strings.TrimSpace(filename)))
	contentType, ok := allowed[ext]
	if !ok {
		return MediaObject{}, invalid("file", fmt.Sprintf("unsupported %s format %q", kind, ext))
	}

	hash := sha256.Sum256(data)
	obj := MediaObject{
		Key:         MediaKeyPrefix + kind + "/" + uuid.NewString() + ext,
		ContentType: contentType,
		Size:        int64(len(data)),
		SHA256:      hex.EncodeToString(hash[:]),
	}
	if err := s.store.Put(ctx, obj.Key, bytes.NewReader(data), obj.Size, contentType); err != nil {
		return MediaObject{}, fmt.Errorf("store media: %w", err)
	}
	return obj, nil
}

// Open streams a stored object. Keys outside the media prefix are rejected.
func (s *MediaService) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if !IsMediaKey(key) {
		return nil, invalid("key", "is not a media key")
	}
	return s.store.Get(ctx, key)
}

// DeleteKeys removes every media key in keys that no live record still
// references and skips the rest. Keys that are already gone count as
// deleted.
func (s *MediaService) DeleteKeys(ctx context.Context, keys []string) error {
	var errs []error
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, dup := seen[key]; dup || !IsMediaKey(key) {
			continue
		}
		seen[key] = struct{}{}

		used, err := s.inUse(ctx, key)
		if err != nil {
			errs = append(errs, fmt.Errorf("count references to %s: %w", key, err))
			continue
		}
		if used {
			continue
		}
		if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func (s *MediaService) inUse(ctx context.Context, key string) (bool, error) {
	for _, refs := range s.refs {
		n, err := refs.CountByMediaKey(ctx, key)
		if err != nil {
			return false, err
		}
		if n > 0 {
			return true, nil
		}
	}
	return false, nil
}

// IsMediaKey reports whether key was produced by Upload.
func IsMediaKey(key string) bool {
	if !strings.HasPrefix(key, MediaKeyPrefix) {
		return false
	}
	return path.Clean(key) == key && !strings.Contains(key, "..")
}

// ContentTypeFor returns the content type for a media key's extension.
func ContentTypeFor(key string) string {
	ext := strings.ToLower(path.Ext(key))
	for _, byExt := range mediaContentTypes {
		if ct, ok := byExt[ext]; ok {
			return ct
		}
	}
	return "application/octet-stream"
}
