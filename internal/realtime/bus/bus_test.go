package bus

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/logger"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/realtime"
)

func TestNewRedisBusRequiresAddr(t *testing.T) {
	if _, err := NewRedisBus(logger.Nop(), RedisConfig{}); err == nil {
		t.Fatalf("expected error without address")
	}
	if _, err := NewRedisBus(nil, RedisConfig{Addr: "localhost:6379"}); err == nil {
		t.Fatalf("expected error without logger")
	}
}

func TestNopBus(t *testing.T) {
	var b Bus = Nop{}
	if err := b.Publish(context.Background(), realtime.Message{Event: "STATUS_CHANGED"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

// Runs only against a live broker: TEST_REDIS_ADDR=localhost:6379.
func TestRedisBusRoundTrip(t *testing.T) {
	addr := strings.TrimSpace(os.Getenv("TEST_REDIS_ADDR"))
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	b, err := NewRedisBus(logger.Nop(), RedisConfig{Addr: addr, Channel: "maywin_test_" + uuid.NewString()})
	if err != nil {
		t.Fatalf("NewRedisBus: %v", err)
	}
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := b.(*redisBus).rdb.Subscribe(ctx, b.(*redisBus).channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	jobID := uuid.New()
	if err := b.Publish(ctx, realtime.Message{Event: "STATUS_CHANGED", JobID: jobID, Status: "VALIDATED"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	select {
	case raw := <-sub.Channel():
		var m realtime.Message
		if err := json.Unmarshal([]byte(raw.Payload), &m); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if m.JobID != jobID || m.Status != "VALIDATED" {
			t.Fatalf("unexpected message: %+v", m)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for message")
	}
}
