package models

// StepType labels an entry in the agent's visible trace.
type StepType string

const (
	StepThought     StepType = "thought"
	StepAction      StepType = "action"
	StepObservation StepType = "observation"
	StepResult      StepType = "result"
)

// Valid reports whether t is one of the four known step types.
func (t StepType) Valid() bool {
	switch t {
	case StepThought, StepAction, StepObservation, StepResult:
		return true
	}
	return false
}

// Step is one labeled, timestamped entry in a run. Timestamp is Unix milliseconds.
type Step struct {
	Type      StepType `json:"type"`
	Content   string   `json:"content"`
	Timestamp int64    `json:"timestamp"`
}

// RunState is the externally visible state of the most recent agent run.
type RunState struct {
	Steps        []Step `json:"steps"`
	CurrentQuery string `json:"current_query"`
	IsProcessing bool   `json:"is_processing"`
}
