package publish

import (
	"context"
	"fmt"
	"strings"
)

// Artifact is one file to publish.
type Artifact struct {
	Coordinates Coordinates
	Classifier  string
	Extension   string
	Content     []byte
}

func (a Artifact) ext() string {
	if a.Extension == "" {
		return "zip"
	}
	return a.Extension
}

// Publisher ships an artifact.
type Publisher interface {
	Publish(ctx context.Context, a Artifact) (string, error)
}

const (
	TargetArtifactory = "artifactory"
	TargetS3          = "s3"
)

// IsValidTarget reports whether name selects a known publisher.
func IsValidTarget(name string) bool {
	switch strings.ToLower(name) {
	case TargetArtifactory, TargetS3:
		return true
	default:
		return false
	}
}

// BlockedError is returned by Gated when the gate did not allow publication.
type BlockedError struct {
	Decision Decision
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("publishing blocked: translation state %s with %d failures", e.Decision.Status, len(e.Decision.Failures))
}

// Gated publishes only when decision allows it.
func Gated(ctx context.Context, decision Decision, p Publisher, a Artifact) (string, error) {
	if !decision.MayPublish {
		return "", &BlockedError{Decision: decision}
	}
	return p.Publish(ctx, a)
}
