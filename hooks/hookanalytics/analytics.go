package hookanalytics

// Analytics holds the named activities a hook wants reported to analytics
// adapters alongside the auction outcome.
type Analytics struct {
	Activities []Activity `json:"activities"`
}

type Activity struct {
	Name    string         `json:"name"`
	Status  ActivityStatus `json:"status"`
	Results []Result       `json:"results,omitempty"`
}

type ActivityStatus string

const (
	ActivityStatusSuccess ActivityStatus = "success"
	ActivityStatusError   ActivityStatus = "error"
)

type Result struct {
	Status    ResultStatus           `json:"status,omitempty"`
	Values    map[string]interface{} `json:"values,omitempty"`
	AppliedTo AppliedTo              `json:"appliedto,omitempty"`
}

type AppliedTo struct {
	Bidders  []string `json:"bidders,omitempty"`
	BidIDs   []string `json:"bidids,omitempty"`
	ImpIDs   []string `json:"impids,omitempty"`
	Request  bool     `json:"request,omitempty"`
	Response bool     `json:"response,omitempty"`
}

type ResultStatus string

const (
	ResultStatusAllow  ResultStatus = "success-allow"
	ResultStatusBlock  ResultStatus = "success-block"
	ResultStatusModify ResultStatus = "success-modify"
	ResultStatusRun    ResultStatus = "run"
	ResultStatusSkip   ResultStatus = "skip"
	ResultStatusError  ResultStatus = "error"
)

// Append merges another analytics set into this one.
func (a *Analytics) Append(other Analytics) {
	a.Activities = append(a.Activities, other.Activities...)
}
