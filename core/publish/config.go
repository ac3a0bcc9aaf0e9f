package publish

// Config holds configuration for publishing the translation bundle.
type Config struct {
	// Enabled turns publishing on. When off, a converged pass only writes files.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Target selects the publisher (artifactory, s3).
	Target string `mapstructure:"target" default:"artifactory"`
	// ContextURL is the Artifactory base URL, e.g. https://maven.example.org/artifactory.
	ContextURL string `mapstructure:"context_url" default:""`
	// Repository overrides the snapshot/release repository choice.
	Repository string `mapstructure:"repository" default:""`
	// SnapshotRepository receives versions containing SNAPSHOT.
	SnapshotRepository string `mapstructure:"snapshot_repository" default:"libs-snapshot-local"`
	// ReleaseRepository receives every other version.
	ReleaseRepository string `mapstructure:"release_repository" default:"libs-release-local"`
	// Username is the Artifactory user.
	Username string `mapstructure:"username" default:""`
	// Password is the Artifactory password or API key.
	Password string `mapstructure:"password" default:""`
	// GroupID overrides the group read from PropertiesFile.
	GroupID string `mapstructure:"group_id" default:""`
	// ArtifactID is the published artifact name.
	ArtifactID string `mapstructure:"artifact_id" default:"crowdin-translations"`
	// Version overrides the version read from PropertiesFile.
	Version string `mapstructure:"version" default:""`
	// PropertiesFile supplies group and version when not configured.
	PropertiesFile string `mapstructure:"properties_file" default:"gradle.properties"`
	// Classifier is appended to the artifact file name.
	Classifier string `mapstructure:"classifier" default:"bundle"`
	// ArchivePrefix is the object prefix of the s3 target.
	ArchivePrefix string `mapstructure:"archive_prefix" default:"bundles"`
	// TimeoutSeconds bounds the upload.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"120"`
}
