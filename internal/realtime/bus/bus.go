package bus

import (
	"context"

	"github.com/WinterJet2021/MayWin-Core-Backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, msg realtime.Message) error
	Close() error
}

// Nop drops every message. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, realtime.Message) error { return nil }

func (Nop) Close() error { return nil }
