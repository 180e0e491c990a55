package ctxutil

import (
	"context"
	"testing"
)

func TestLogFields(t *testing.T) {
	if got := LogFields(context.Background()); got != nil {
		t.Fatalf("LogFields without ids: want=nil got=%v", got)
	}
	ctx := WithRequestIDs(context.Background(), RequestIDs{RequestID: "r-1"})
	got := LogFields(ctx)
	if len(got) != 2 || got[0] != "request_id" || got[1] != "r-1" {
		t.Fatalf("LogFields: got=%v", got)
	}
}
