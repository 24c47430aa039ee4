package dto

// Distribution outcomes per student.
const (
	DistributionAssigned        = "assigned"
	DistributionAlreadyAssigned = "already_assigned"
	DistributionFailed          = "failed"
)

// DistributionResult is the outcome of handing an assignment to one student.
type DistributionResult struct {
	Student   uint   `json:"student"`
	StudentID string `json:"studentID"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// DistributionReport summarises an assign-task run. Failures are listed, never rolled back.
type DistributionReport struct {
	AssignmentID    uint                 `json:"assignmentId"`
	DueGateOpen     bool                 `json:"dueGateOpen"`
	StudentAssigned int                  `json:"studentAssigned"`
	Assigned        int                  `json:"assigned"`
	AlreadyAssigned int                  `json:"alreadyAssigned"`
	Failed          int                  `json:"failed"`
	Results         []DistributionResult `json:"results"`
}

// Add records a per-student result and updates the tallies.
func (r *DistributionReport) Add(result DistributionResult) {
	switch result.Status {
	case DistributionAssigned:
		r.Assigned++
	case DistributionAlreadyAssigned:
		r.AlreadyAssigned++
	case DistributionFailed:
		r.Failed++
	}
	r.Results = append(r.Results, result)
}
