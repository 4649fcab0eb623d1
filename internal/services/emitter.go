package services

import (
	"context"

	"github.com/yungbote/contentflow-backend/internal/realtime"
	"github.com/yungbote/contentflow-backend/internal/realtime/bus"
)

// SSEEmitter pushes a realtime message towards connected clients.
type SSEEmitter interface {
	Emit(ctx context.Context, msg realtime.SSEMessage) error
}

type hubEmitter struct {
	hub *realtime.SSEHub
}

// NewHubEmitter broadcasts straight into the in-process hub.
func NewHubEmitter(hub *realtime.SSEHub) SSEEmitter {
	return &hubEmitter{hub: hub}
}

func (e *hubEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) error {
	if e == nil || e.hub == nil {
		return nil
	}
	e.hub.Broadcast(msg)
	return nil
}

type busEmitter struct {
	bus bus.Bus
}

// NewBusEmitter publishes on the bus so every API replica's hub sees the message.
func NewBusEmitter(b bus.Bus) SSEEmitter {
	return &busEmitter{bus: b}
}

func (e *busEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) error {
	if e == nil || e.bus == nil {
		return nil
	}
	return e.bus.Publish(ctx, msg)
}

type nopEmitter struct{}

func (nopEmitter) Emit(context.Context, realtime.SSEMessage) error { return nil }
