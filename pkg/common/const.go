package common

// Cache keys, formatted with the ticker symbol.
const (
	KEY_PREDICTION = "prediction:%s"
)

// SSE event names.
const (
	EVENT_PREDICTION = "prediction"
)
