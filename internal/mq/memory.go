package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const (
	// maxMemoryDeliveries bounds redelivery of a nacked message.
	maxMemoryDeliveries = 3
	memoryQueueSize     = 1024
)

var (
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("mq: backend closed")
	// ErrQueueFull is returned when a channel already holds memoryQueueSize
	// undelivered messages.
	ErrQueueFull = errors.New("mq: queue full")
)

// Memory is an in-process Backend. Each channel behaves as a queue: a
// message is delivered to one subscriber and is held until one appears.
// Publish never waits for room; a full queue rejects the message.
type Memory struct {
	mu     sync.Mutex
	queues map[string]chan delivery
	closed chan struct{}
	once   sync.Once
}

type delivery struct {
	msg      Message
	attempts int
}

func NewMemory() *Memory {
	return &Memory{queues: make(map[string]chan delivery), closed: make(chan struct{})}
}

func (m *Memory) queue(channel string) chan delivery {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.queues[channel]
	if !ok {
		q = make(chan delivery, memoryQueueSize)
		m.queues[channel] = q
	}
	return q
}

func (m *Memory) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if strings.TrimSpace(channel) == "" {
		return "", errors.New("memory channel is required")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	select {
	case <-m.closed:
		return "", ErrClosed
	default:
	}

	msg := Message{ID: uuid.NewString(), Data: data, Attributes: attrs}
	select {
	case m.queue(channel) <- delivery{msg: msg}:
		return msg.ID, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrQueueFull, channel)
	}
}

func (m *Memory) Subscribe(ctx context.Context, channel string, handler Handler) error {
	if strings.TrimSpace(channel) == "" {
		return errors.New("memory channel is required")
	}
	q := m.queue(channel)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.closed:
			return ErrClosed
		case d := <-q:
			if err := handler(ctx, d.msg); err != nil {
				d.attempts++
				if d.attempts < maxMemoryDeliveries {
					select {
					case q <- d:
					default:
					}
				}
			}
		}
	}
}

func (m *Memory) Close() error {
	m.once.Do(func() { close(m.closed) })
	return nil
}
