package ledger

// Config holds configuration for the progress ledger.
type Config struct {
	// Backend selects the store (memory, file, s3, database).
	Backend string `mapstructure:"backend" default:"memory"`
	// Path is the ledger file of the file backend.
	Path string `mapstructure:"path" default:".crowdin-ledger.yaml"`
	// ObjectKey is the object name of the s3 backend.
	ObjectKey string `mapstructure:"object_key" default:"ledger/progress.yaml"`
}
