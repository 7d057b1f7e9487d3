package model

// Envelope is the result shape returned for every operation. Exactly one of
// Data and Error is set, matching Ok.
type Envelope struct {
	Type     string      `json:"type"`
	Ok       bool        `json:"ok"`
	EventID  string      `json:"eventId"`
	Platform string      `json:"platform"`
	Username string      `json:"username"`
	Data     interface{} `json:"data,omitempty"`
	Error    *ErrorBody  `json:"error,omitempty"`
	Timings  Timings     `json:"timings"`
}

// ErrorBody is the structured error carried in a failed envelope.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Timings records how long the operation took end to end.
type Timings struct {
	MsTotal int64 `json:"msTotal"`
}
