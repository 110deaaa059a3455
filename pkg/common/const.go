package common

// Storage key formats, one key per asset symbol.
const (
	KEY_FORECAST_CACHE   = "forecast_cache:%s"
	KEY_ANALYSIS_HISTORY = "analysis_history:%s"
	KEY_ALERT_STATE      = "alert_state:%s"
)

// In-memory cache key formats.
const (
	KEY_NEWS_CATEGORY = "news:%s"
	KEY_LAST_QUOTE    = "last_quote:%s"
)

const (
	ASSET_KIND_GOLD  = "gold"
	ASSET_KIND_STOCK = "stock"
)

const (
	UNIT_USD = "USD"
	UNIT_THB = "THB"
)

const (
	KEY_LOG_HOOK_SEND_ALERT = "send_alert"
)
