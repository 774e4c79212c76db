package models

type Skill struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	Version     *string `json:"version,omitempty"`
	Category    *string `json:"category,omitempty"`
	CreatedAt   string  `json:"createdAt"`
	Installs    int     `json:"installs"`
}
