package models

type Ping struct {
	ID        string `json:"id"`
	AgentName string `json:"agentName"`
	Message   string `json:"message"`
	Date      string `json:"date"`
	Timestamp string `json:"timestamp"`
}

// PingResult reports the outcome of a gm. A duplicate for the day is not an
// error: Success is false and Pulse holds the ping already recorded.
type PingResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Pulse   *Ping  `json:"pulse,omitempty"`
	Streak  int    `json:"streak,omitempty"`
}
