package triasync

type RunPubSubPayload struct {
	RunId uint `json:"run_id"`
}

type PubSubPushEnvelope struct {
	Message struct {
		Data []byte `json:"data"`
		ID   string `json:"messageId"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// Summary counts the rows a classifier handled. Created and Updated track
// the records the rows resolved to, so a run report can distinguish fresh
// data from refreshes.
type Summary struct {
	RowsProcessed int
	RowsFailed    int
	Created       int
	Updated       int
}

type RunResponse struct {
	ID            uint    `json:"id"`
	ReportType    string  `json:"reportType"`
	Status        string  `json:"status"`
	FileName      string  `json:"fileName"`
	RowsProcessed int     `json:"rowsProcessed"`
	RowsFailed    int     `json:"rowsFailed"`
	RowsCreated   int     `json:"rowsCreated"`
	RowsUpdated   int     `json:"rowsUpdated"`
	ErrorMessage  string  `json:"errorMessage,omitempty"`
	TriggeredBy   string  `json:"triggeredBy"`
	StartedAt     *string `json:"startedAt"`
	FinishedAt    *string `json:"finishedAt"`
	DurationMs    int64   `json:"durationMs"`
}
