package crowdin

// Config holds configuration for the Crowdin API client.
type Config struct {
	// BaseURL is the API root.
	BaseURL string `mapstructure:"base_url" default:"https://api.crowdin.com/api/v2"`
	// Token is the personal access token sent as a bearer token.
	Token string `mapstructure:"token" default:""`
	// ProjectID is the numeric Crowdin project id.
	ProjectID int64 `mapstructure:"project_id" default:"0"`
	// BasePath is the project directory mirrored by the local source root.
	BasePath string `mapstructure:"base_path" default:""`
	// TimeoutSeconds bounds a single HTTP request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// RateLimitRetries is how often a 429 response is retried before surfacing.
	RateLimitRetries int `mapstructure:"rate_limit_retries" default:"10"`
	// PageSize is the limit used for paginated list calls (max 500).
	PageSize int `mapstructure:"page_size" default:"500"`
}
