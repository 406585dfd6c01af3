// Package gochannel wires an in-memory watermill channel for development and
// tests. Everything rides one process-local pubsub, so a worker consumes the
// inbound events the ingest handlers publish without a broker.
package gochannel

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// CreateChannel creates a GoChannel-based publisher and subscriber. The same
// instance backs both sides. The buffer absorbs inbound conversation bursts;
// messages are gone once consumed, since a suspended execution keeps its
// state in persistence, not on the bus.
func CreateChannel(logger watermill.LoggerAdapter) (*gochannel.GoChannel, *gochannel.GoChannel, error) {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            256,
			Persistent:                     false,
			BlockPublishUntilSubscriberAck: false,
		},
		logger,
	)

	return pubSub, pubSub, nil
}
