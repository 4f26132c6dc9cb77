package domain

// Skill is a node in the skills tree with a self-assessed level.
type Skill struct {
	Syncable

	Name     string `json:"name"`
	ThemeID  string `json:"themeId,omitempty"`
	ParentID string `json:"parentId,omitempty"`
	Level    int    `json:"level"` // 0..5 self-assessment
	Notes    string `json:"notes,omitempty"`
}

// Issue is a tracked problem or blocker.
type Issue struct {
	Syncable

	Title     string `json:"title"`
	Body      string `json:"body,omitempty"`
	ProjectID string `json:"projectId,omitempty"`
	Status    string `json:"status"` // open | closed
}

// Project groups issues and journal entries under one effort.
type Project struct {
	Syncable

	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ThemeID     string `json:"themeId,omitempty"`
	Archived    bool   `json:"archived"`
}
