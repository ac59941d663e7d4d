package models

// Requests for the signal HTTP endpoints. Defined in domain for consistency and reuse.

type AnalysisRequest struct {
	AssetID          string `json:"asset_id" validate:"required"`
	TimeframeMinutes int    `json:"timeframe" validate:"gte=0,lte=1440"`
}

type HistoryRequest struct {
	N int `query:"n" json:"n" default:"5" validate:"gte=1,lte=100"`
}

type AssetsRequest struct {
	Category string `query:"category" json:"category"`
}

type SignalRequest struct {
	ID int64 `param:"id" json:"-" validate:"gte=1"`
}

type SettleRequest struct {
	ID      int64     `param:"id" json:"-" validate:"gte=1"`
	Outcome Direction `json:"outcome" validate:"required,oneof=CALL PUT"`
}
