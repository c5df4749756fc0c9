package models

// Request DTOs for the collaborator-facing HTTP API. Defaults come from
// creasty/defaults, constraints from go-playground/validator tags.

type CandlesRequest struct {
	Symbol   string `query:"symbol" validate:"required,alphanum,uppercase"`
	Interval string `query:"interval" default:"1h"`
	Limit    int    `query:"limit" default:"100" validate:"gte=1,lte=1000"`
}

type NewsRequest struct {
	Limit    int    `query:"limit" default:"50" validate:"gte=1,lte=500"`
	Category string `query:"category" validate:"omitempty,excluded_with=Asset"`
	Asset    string `query:"asset" validate:"omitempty,excluded_with=Category"`
}

type TrendsRequest struct {
	Symbol   string `query:"symbol" validate:"required,alphanum,uppercase"`
	Interval string `query:"interval" default:"1h"`
	Limit    int    `query:"limit" default:"100" validate:"gte=1,lte=1000"`
}

type SnapshotRequest struct {
	Payload map[string]any `json:"payload" validate:"required"`
}
