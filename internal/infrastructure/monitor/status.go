package monitor

import "time"

type Status struct {
	PostgreSQL   bool      `json:"postgresql"`
	Redis        bool      `json:"redis"`
	KV           bool      `json:"kv"`
	PendingVotes int       `json:"pending_votes"`
	LastCheck    time.Time `json:"last_check"`
}
