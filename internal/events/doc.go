// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

// Package events provides the in-process retrain command bus.
//
// The HTTP API publishes a RetrainCommand and returns 202 Accepted at once;
// the trainer service is the single subscriber and retrains in the
// background. The bus is Watermill's gochannel pub/sub, so commands live
// only in memory.
//
// # Usage
//
//	bus := events.NewBus(events.DefaultBusConfig(), logger)
//	defer bus.Close()
//
//	msgs, _ := bus.SubscribeRetrain(ctx)
//	for msg := range msgs {
//	    cmd, err := events.DecodeRetrain(msg)
//	    ...
//	    msg.Ack()
//	}
//
// Payloads are JSON (goccy/go-json) and command ids are UUIDv4 values that
// double as the Watermill message UUID.
package events
