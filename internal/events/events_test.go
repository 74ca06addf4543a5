package events

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"star-fee-distributor/internal/domain"
)

func TestWrap(t *testing.T) {
	e := domain.InvestorPayout{
		Vault:     "vault1",
		Investor:  "invA",
		Amount:    300,
		Day:       19675,
		Page:      1,
		Timestamp: 1_700_000_000,
	}

	env, err := Wrap(e)
	if err != nil {
		t.Fatalf("Wrap failed: %v", err)
	}
	if env.Type != "investor_payout" || env.Vault != "vault1" || env.Timestamp != 1_700_000_000 {
		t.Errorf("envelope header mismatch: %+v", env)
	}

	var decoded domain.InvestorPayout
	if err := json.Unmarshal(env.Data, &decoded); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if decoded.Amount != 300 {
		t.Errorf("payload amount = %d, want 300", decoded.Amount)
	}
}

func TestLogSink(t *testing.T) {
	var buf strings.Builder
	sink := NewLogSink(log.New(&buf, "[events] ", 0))

	sink.Emit(context.Background(), domain.QuoteFeesClaimed{Vault: "vault1", Amount: 42})

	out := buf.String()
	if !strings.Contains(out, "quote_fees_claimed") || !strings.Contains(out, "vault1") {
		t.Errorf("log output missing event fields: %q", out)
	}
}

func TestMultiSink(t *testing.T) {
	var a, b strings.Builder
	m := MultiSink{
		NewLogSink(log.New(&a, "", 0)),
		NewLogSink(log.New(&b, "", 0)),
	}

	m.Emit(context.Background(), domain.DailyCapApplied{Vault: "vault1", CappedPayout: 10})

	if !strings.Contains(a.String(), "daily_cap_applied") || !strings.Contains(b.String(), "daily_cap_applied") {
		t.Error("event must reach every sink")
	}
}

func TestBroadcaster_DeliversToSubscriber(t *testing.T) {
	b := NewBroadcaster(log.New(io.Discard, "", 0))
	defer b.Close()

	srv := httptest.NewServer(b)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	// Wait for the subscription to register before emitting.
	deadline := time.Now().Add(2 * time.Second)
	for b.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	b.Emit(context.Background(), domain.CreatorPayoutDayClosed{
		Vault:     "vault1",
		Day:       19675,
		Remainder: 500,
		Timestamp: 1_700_000_000,
	})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read envelope: %v", err)
	}
	if env.Type != "creator_payout_day_closed" || env.Vault != "vault1" {
		t.Errorf("unexpected envelope: %+v", env)
	}
}
