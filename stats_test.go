package main

import (
	"testing"
	"time"
)

func TestStatsEmpty(t *testing.T) {
	stats := NewLedger(0).Stats()
	if stats.Total != 0 || stats.Successful != 0 || stats.Failed != 0 {
		t.Errorf("empty ledger reports non-zero counters: %+v", stats)
	}
	if stats.SuccessRate != "0.0%" {
		t.Errorf("empty ledger success rate %q, want 0.0%%", stats.SuccessRate)
	}
	if stats.LastMessageTime != nil {
		t.Error("empty ledger reports a last message time")
	}
}

func TestStatsSuccessRate(t *testing.T) {
	ledger := NewLedger(0)
	for i := 0; i < 3; i++ {
		ledger.Add(Message{Direction: DirectionReceived, Status: StatusAccepted})
	}
	ledger.Add(Message{Direction: DirectionReceived, Status: StatusRejected})

	stats := ledger.Stats()
	if stats.Total != 4 || stats.Successful != 3 || stats.Failed != 1 {
		t.Errorf("counters total=%d successful=%d failed=%d", stats.Total, stats.Successful, stats.Failed)
	}
	if stats.SuccessRate != "75.0%" {
		t.Errorf("success rate %q, want 75.0%%", stats.SuccessRate)
	}
}

func TestStatsDirectionCounters(t *testing.T) {
	ledger := NewLedger(0)
	ledger.Add(Message{Direction: DirectionReceived, Status: StatusAccepted})
	ledger.Add(Message{Direction: DirectionSent, Status: StatusSimulated})
	ledger.Add(Message{Direction: DirectionSent, Status: StatusDelivered})

	stats := ledger.Stats()
	if stats.Received != 1 || stats.Sent != 2 {
		t.Errorf("direction counters received=%d sent=%d, want 1/2", stats.Received, stats.Sent)
	}
	if stats.LastMessageTime == nil {
		t.Fatal("last message time missing")
	}
	if time.Since(*stats.LastMessageTime) > time.Minute {
		t.Errorf("last message time %v not recent", *stats.LastMessageTime)
	}
}

func TestStatsUptimeSurvivesReset(t *testing.T) {
	ledger := NewLedger(0)
	started := ledger.Stats().StartTime
	ledger.Add(Message{Direction: DirectionReceived, Status: StatusAccepted})
	ledger.Reset()
	if got := ledger.Stats().StartTime; !got.Equal(started) {
		t.Errorf("start time changed on reset: %v != %v", got, started)
	}
}
