package domain

// ProgramWeek is one week of the study program: a theme and a list of
// tasks to complete.
type ProgramWeek struct {
	Syncable

	Title   string        `json:"title"`
	ThemeID string        `json:"themeId,omitempty"`
	Number  int           `json:"number"`
	Tasks   []ProgramTask `json:"tasks"`
}

// ProgramTask is a single actionable item inside a week.
type ProgramTask struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Done  bool   `json:"done"`
}

// ProgramProgress tracks per-week completion state.
type ProgramProgress struct {
	Syncable

	WeekID       string   `json:"weekId"`
	DoneTaskIDs  []string `json:"doneTaskIds"`
	PercentDone  float64  `json:"percentDone"`
	Notes        string   `json:"notes,omitempty"`
	CompletedAll bool     `json:"completedAll"`
}
