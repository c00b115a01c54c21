package main

import (
	"fmt"
	"time"
)

// statCounters are the running totals kept inside the ledger's critical
// section, so they can never diverge from the stored messages.
type statCounters struct {
	total       int
	successful  int
	failed      int
	received    int
	sent        int
	lastMessage time.Time
}

func (c *statCounters) count(msg Message) {
	c.total++
	if msg.Status == StatusRejected {
		c.failed++
	} else {
		c.successful++
	}
	if msg.Direction == DirectionSent {
		c.sent++
	} else {
		c.received++
	}
	c.lastMessage = msg.Timestamp
}

// Stats is the aggregated view served on the statistics endpoint.
type Stats struct {
	Total           int        `json:"total_messages"`
	Successful      int        `json:"successful_messages"`
	Failed          int        `json:"failed_messages"`
	Received        int        `json:"received_messages"`
	Sent            int        `json:"sent_messages"`
	SuccessRate     string     `json:"success_rate"`
	UptimeSeconds   int64      `json:"uptime_seconds"`
	PerMinute       float64    `json:"messages_per_minute"`
	LastMessageTime *time.Time `json:"last_message_time"`
	StartTime       time.Time  `json:"start_time"`
}

// Stats returns the current aggregated counters. The work is O(1), the
// counters are maintained on every append instead of scanning the ledger.
func (l *Ledger) Stats() Stats {
	l.mu.RLock()
	c := l.counts
	started := l.started
	l.mu.RUnlock()

	uptime := time.Since(started)
	stats := Stats{
		Total:         c.total,
		Successful:    c.successful,
		Failed:        c.failed,
		Received:      c.received,
		Sent:          c.sent,
		SuccessRate:   successRate(c.successful, c.total),
		UptimeSeconds: int64(uptime.Seconds()),
		StartTime:     started,
	}
	minutes := uptime.Minutes()
	if minutes < 1 {
		minutes = 1
	}
	stats.PerMinute = float64(int(float64(c.total)/minutes*100+0.5)) / 100
	if !c.lastMessage.IsZero() {
		last := c.lastMessage
		stats.LastMessageTime = &last
	}
	return stats
}

func successRate(successful, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(successful)/float64(total)*100)
}

// uptimeString formats an uptime the way the dashboard shows it.
func uptimeString(since time.Time) string {
	d := time.Since(since)
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
