package domain

// Outcome is what a successful chain run resolves to.
type Outcome struct {
	Result  *Result  `json:"result"`
	Effects []Effect `json:"effects"`
	// ResultIndex is the step whose result was resolved, or -1 when none was.
	ResultIndex int   `json:"result_index"`
	Executed    []int `json:"executed"`
	Skipped     []int `json:"skipped,omitempty"`
}
