package contracts

// PhaseCode is the temporal position of a target relative to its effective date
type PhaseCode string

const (
	PhaseBefore PhaseCode = "BEFORE"
	PhaseOnDate PhaseCode = "ON_DATE"
	PhaseAfter  PhaseCode = "AFTER"
)

// Phase is the derived battle phase. Days is |effective - reference| in calendar days.
type Phase struct {
	Code PhaseCode `json:"code"`
	Days int       `json:"days"`
}
