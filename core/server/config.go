package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// WebhookSecret, when set, must match the X-Webhook-Secret header of Crowdin webhooks.
	WebhookSecret string `mapstructure:"webhook_secret" default:""`
	// ShutdownSeconds bounds graceful shutdown, including a pass in flight.
	ShutdownSeconds int `mapstructure:"shutdown_seconds" default:"30"`
}

// Addr returns the listen address for Port.
func (c Config) Addr() string {
	return ":" + c.Port
}
