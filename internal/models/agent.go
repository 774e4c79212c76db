package models

type Agent struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Owner       *string `json:"owner,omitempty"`
	Avatar      *string `json:"avatar,omitempty"`
	TweetURL    *string `json:"tweetUrl,omitempty"`
	Premium     bool    `json:"premium"`
	CreatedAt   string  `json:"createdAt"`
	LastGm      *string `json:"lastGm"`
	GmStreak    int     `json:"gmStreak"`
	TotalGms    int     `json:"totalGms"`
}

// AgentWithStats is an Agent decorated with check-in activity derived from
// its current heartbeat and heartbeat history.
type AgentWithStats struct {
	Agent
	CheckInCount     int               `json:"checkInCount"`
	LastActivity     *string           `json:"lastActivity"`
	IsActive         bool              `json:"isActive"`
	CurrentHeartbeat *HeartbeatSummary `json:"currentHeartbeat"`
}

type HeartbeatSummary struct {
	WorkingOn *WorkingOn `json:"workingOn,omitempty"`
	UpdatedAt string     `json:"updatedAt"`
}

type AgentProfile struct {
	Agent     Agent          `json:"agent"`
	Heartbeat *Heartbeat     `json:"heartbeat"`
	History   []HistoryEntry `json:"history"`
}
