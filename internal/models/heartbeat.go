package models

type WorkingOn struct {
	Task         string   `json:"task"`
	CriticalPath string   `json:"criticalPath,omitempty"`
	Bumps        []string `json:"bumps,omitempty"`
}

type DoneItem struct {
	Task       string `json:"task"`
	Test       string `json:"test,omitempty"`
	Benchmarks string `json:"benchmarks,omitempty"`
	Review     string `json:"review,omitempty"`
}

type Contact struct {
	Website  string `json:"website,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	Telegram string `json:"telegram,omitempty"`
	Discord  string `json:"discord,omitempty"`
	Email    string `json:"email,omitempty"`
	Owner    string `json:"owner,omitempty"`
}

// HeartbeatFields is the patchable part of a heartbeat. A nil field was not
// supplied and leaves the stored value untouched.
type HeartbeatFields struct {
	Name          *string    `json:"name,omitempty"`
	WalletAddress *string    `json:"walletAddress,omitempty"`
	PfpURL        *string    `json:"pfpUrl,omitempty"`
	WorkingOn     *WorkingOn `json:"workingOn,omitempty"`
	Todo          []string   `json:"todo,omitempty"`
	Upcoming      []string   `json:"upcoming,omitempty"`
	Done          []DoneItem `json:"done,omitempty"`
	Contact       *Contact   `json:"contact,omitempty"`
}

// HasActivity reports whether any of the fields recorded in heartbeat
// history were supplied. Profile-only updates return false.
func (f HeartbeatFields) HasActivity() bool {
	return f.WorkingOn != nil || f.Todo != nil || f.Upcoming != nil || f.Done != nil
}

type Heartbeat struct {
	AgentName string `json:"agentName"`
	HeartbeatFields
	UpdatedAt string `json:"updatedAt"`
	CreatedAt string `json:"createdAt"`
}

type HistoryEntry struct {
	ID        int64      `json:"id"`
	AgentName string     `json:"agentName"`
	WorkingOn *WorkingOn `json:"workingOn,omitempty"`
	Todo      []string   `json:"todo,omitempty"`
	Upcoming  []string   `json:"upcoming,omitempty"`
	Done      []DoneItem `json:"done,omitempty"`
	Timestamp string     `json:"timestamp"`
}

type HeartbeatFeed struct {
	Entries    []HistoryEntry `json:"entries"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	TotalPages int            `json:"totalPages"`
}
