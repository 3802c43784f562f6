package authority

import "encoding/json"

// envelope is the authority's common response wrapper. statusCode >= 0
// means success; negative values are rejections explained by remark.
type envelope struct {
	StatusCode int64           `json:"statusCode"`
	Remark     string          `json:"remark"`
	Data       json.RawMessage `json:"data"`
}

func (e envelope) success() bool {
	return e.StatusCode >= 0
}

type saleData struct {
	ValidationURL              string `json:"validationURL"`
	ShouldDownloadLatestConfig bool   `json:"shouldDownloadLatestConfig"`
	ShouldBlockTerminal        bool   `json:"shouldBlockTerminal"`
}

type blockingMessageData struct {
	IsBlocked      bool   `json:"isBlocked"`
	BlockingReason string `json:"blockingReason"`
}

type unblockStatusData struct {
	IsUnblocked bool `json:"isUnblocked"`
}

// OutcomeKind is the closed set of submission results.
type OutcomeKind int

const (
	// OutcomeConfirmed: the authority accepted the invoice.
	OutcomeConfirmed OutcomeKind = iota
	// OutcomeRejected: the authority refused it; Remark carries the cause.
	OutcomeRejected
	// OutcomeTimeout: the call did not complete within the bound. This is
	// the only outcome that triggers the offline path.
	OutcomeTimeout
)

// SubmitOutcome classifies one submission attempt. Advisory flags are only
// meaningful for OutcomeConfirmed.
type SubmitOutcome struct {
	Kind       OutcomeKind
	StatusCode int64
	Remark     string

	ValidationURL              string
	ShouldDownloadLatestConfig bool
	ShouldBlockTerminal        bool
}
