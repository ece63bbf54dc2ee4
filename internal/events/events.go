// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TopicRetrain carries RetrainCommand messages.
const TopicRetrain = "model.retrain"

// Retrain command sources.
const (
	SourceAPI      = "api"
	SourceSchedule = "schedule"
)

// Metadata keys set on every message.
const (
	MetadataRequestID = "request_id"
	MetadataSource    = "source"
)

// ErrBusClosed is returned when publishing or subscribing after Close.
var ErrBusClosed = errors.New("event bus closed")

// RetrainCommand asks the trainer to rebuild the model from the datasets.
type RetrainCommand struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Reason      string    `json:"reason,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// BusConfig holds configuration for the in-process bus.
type BusConfig struct {
	// BufferSize is the per-subscriber output channel buffer.
	BufferSize int64
}

// DefaultBusConfig returns the defaults used by the server.
func DefaultBusConfig() BusConfig {
	return BusConfig{BufferSize: 16}
}

// Bus is an in-process command bus backed by Watermill's Go channel pub/sub.
//
// Messages are not persisted: a command published while nobody is
// subscribed is dropped.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewBus creates a bus.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBus(cfg BusConfig, logger zerolog.Logger) *Bus {
	logger = logger.With().Str("component", "events").Logger()
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            cfg.BufferSize,
		Persistent:                     false,
		BlockPublishUntilSubscriberAck: false,
	}, NewWatermillLogger(logger))

	return &Bus{pubsub: pubsub, logger: logger}
}

// PublishRetrain publishes cmd on TopicRetrain and returns its id.
// Missing ID and RequestedAt fields are filled in.
func (b *Bus) PublishRetrain(ctx context.Context, cmd RetrainCommand) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return "", ErrBusClosed
	}

	if cmd.ID == "" {
		cmd.ID = uuid.New().String()
	}
	if cmd.RequestedAt.IsZero() {
		cmd.RequestedAt = time.Now().UTC()
	}
	if cmd.Source == "" {
		cmd.Source = SourceAPI
	}

	payload, err := json.Marshal(cmd)
	if err != nil {
		return "", fmt.Errorf("marshal retrain command: %w", err)
	}

	msg := message.NewMessage(cmd.ID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set(MetadataSource, cmd.Source)
	if cmd.RequestID != "" {
		msg.Metadata.Set(MetadataRequestID, cmd.RequestID)
	}

	if err := b.pubsub.Publish(TopicRetrain, msg); err != nil {
		return "", fmt.Errorf("publish retrain command: %w", err)
	}

	b.logger.Debug().
		Str("command_id", cmd.ID).
		Str("source", cmd.Source).
		Msg("Retrain command published")
	return cmd.ID, nil
}

// SubscribeRetrain returns the stream of retrain messages. Each message must
// be acknowledged before the next one is delivered. The channel closes when
// ctx is cancelled or the bus is closed.
func (b *Bus) SubscribeRetrain(ctx context.Context) (<-chan *message.Message, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrBusClosed
	}
	return b.pubsub.Subscribe(ctx, TopicRetrain)
}

// DecodeRetrain parses a retrain message payload.
func DecodeRetrain(msg *message.Message) (RetrainCommand, error) {
	var cmd RetrainCommand
	if err := json.Unmarshal(msg.Payload, &cmd); err != nil {
		return cmd, fmt.Errorf("decode retrain command %s: %w", msg.UUID, err)
	}
	if cmd.ID == "" {
		cmd.ID = msg.UUID
	}
	return cmd, nil
}

// Close shuts the bus down. It is safe to call more than once.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.pubsub.Close()
}
