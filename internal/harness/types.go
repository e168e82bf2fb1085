package harness

// Result is the outcome of one scenario.
type Result struct {
	Name string `json:"name"`

	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	Steps []StepResult `json:"steps"`

	Errors []string `json:"errors,omitempty"`
}

// StepResult records what one step did.
type StepResult struct {
	Index   int    `json:"index"`
	Kind    string `json:"kind"`
	Target  string `json:"target"`
	Batch   string `json:"batch"`
	Outcome string `json:"outcome"`
	Output  string `json:"output"`

	Error *StepError `json:"error,omitempty"`

	// Executed and Reused list test ids, sorted, for committed tests steps.
	Executed []string `json:"executed,omitempty"`
	Reused   []string `json:"reused,omitempty"`
}

// StepError is a rollback as the harness sees it.
type StepError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Line and Column are 1-based, zero when the error has no location.
	Line   int `json:"line,omitempty"`
	Column int `json:"column,omitempty"`
}

// NewResult creates a passing result for the named scenario.
func NewResult(name string) *Result {
	return &Result{
		Name:   name,
		Pass:   true,
		Steps:  []StepResult{},
		Errors: []string{},
	}
}

// AddError records a failed check and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
