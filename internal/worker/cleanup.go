package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/musiccompanion/apiserver/internal/mq"
	"github.com/musiccompanion/apiserver/internal/services"
	"go.uber.org/zap"
)

// CleanupChannels are the events whose media keys MediaCleaner removes.
var CleanupChannels = []string{services.EventSongDeleted, services.EventVocalDeleted}

// MediaCleaner deletes stored media once the record that referenced it is
// gone. Deletes are idempotent, so redelivered events are harmless.
type MediaCleaner struct {
	bus   mq.Backend
	media *services.MediaService
	log   *zap.Logger
}

func NewMediaCleaner(bus mq.Backend, media *services.MediaService, log *zap.Logger) *MediaCleaner {
	if log == nil {
		log = zap.NewNop()
	}
	return &MediaCleaner{bus: bus, media: media, log: log}
}

// Run subscribes to every cleanup channel and blocks until ctx is done or
// a subscription fails.
func (c *MediaCleaner) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, len(CleanupChannels))
	for _, channel := range CleanupChannels {
		wg.Add(1)
		go func(channel string) {
			defer wg.Done()
			c.log.Info("subscribing", zap.String("channel", channel))
			if err := c.bus.Subscribe(ctx, channel, c.Handle); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("subscribe %s: %w", channel, err)
				cancel()
			}
		}(channel)
	}
	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Handle processes one deletion event. Malformed payloads are dropped;
// storage failures are returned so the broker redelivers.
func (c *MediaCleaner) Handle(ctx context.Context, msg mq.Message) error {
	evt, err := services.DecodeEvent(msg.Data)
	if err != nil {
		c.log.Warn("dropping malformed event", zap.String("message_id", msg.ID), zap.Error(err))
		return nil
	}
	if len(evt.MediaKeys) == 0 {
		return nil
	}
	if err := c.media.DeleteKeys(ctx, evt.MediaKeys); err != nil {
		c.log.Error("media cleanup failed",
			zap.String("type", evt.Type),
			zap.Stringer("id", evt.ID),
			zap.Error(err),
		)
		return err
	}
	c.log.Info("media cleaned up",
		zap.String("type", evt.Type),
		zap.Stringer("id", evt.ID),
		zap.Strings("keys", evt.MediaKeys),
	)
	return nil
}
