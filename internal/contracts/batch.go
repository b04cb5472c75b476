package contracts

import "fmt"

// FetchStatus is the outcome of one upstream table fetch
type FetchStatus string

const (
	StatusOK     FetchStatus = "ok"
	StatusEmpty  FetchStatus = "empty"
	StatusFailed FetchStatus = "failed"
)

// RowError records one skipped upstream row
type RowError struct {
	Symbol string
	Err    error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %s: %v", e.Symbol, e.Err)
}

// QuoteBatch is the parsed result of one quote source
type QuoteBatch struct {
	Source  QuoteSource   `json:"source"`
	Status  FetchStatus   `json:"status"`
	Err     error         `json:"-"`
	Records []QuoteRecord `json:"records"`
	Skipped []RowError    `json:"-"`
}

// FailedQuoteBatch wraps a source-level error
func FailedQuoteBatch(source QuoteSource, err error) QuoteBatch {
	return QuoteBatch{Source: source, Status: StatusFailed, Err: err}
}

// Finalize derives Status from the parsed records
func (b *QuoteBatch) Finalize() {
	if b.Status == StatusFailed {
		return
	}
	if len(b.Records) == 0 {
		b.Status = StatusEmpty
		return
	}
	b.Status = StatusOK
}

// FlowSource identifies an institutional-flow table
type FlowSource string

const (
	FlowSourceTWSE FlowSource = "TWSE_T86"
	FlowSourceTPEx FlowSource = "TPEX_3INSTI"
)

// FlowBatch is the parsed result of one institutional-flow table
type FlowBatch struct {
	Source  FlowSource   `json:"source"`
	Status  FetchStatus  `json:"status"`
	Err     error        `json:"-"`
	Records []FlowRecord `json:"records"`
	Skipped []RowError   `json:"-"`
}

// FailedFlowBatch wraps a source-level error
func FailedFlowBatch(source FlowSource, err error) FlowBatch {
	return FlowBatch{Source: source, Status: StatusFailed, Err: err}
}

// Finalize derives Status from the parsed records
func (b *FlowBatch) Finalize() {
	if b.Status == StatusFailed {
		return
	}
	if len(b.Records) == 0 {
		b.Status = StatusEmpty
		return
	}
	b.Status = StatusOK
}
