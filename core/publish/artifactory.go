package publish

import (
	"context"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ArtifactoryPublisher uploads artifacts with the Artifactory deploy API.
type ArtifactoryPublisher struct {
	client   *resty.Client
	baseURL  string
	repo     string
	snapshot string
	release  string
}

// NewArtifactoryPublisher builds a publisher from cfg.
func NewArtifactoryPublisher(cfg Config) (*ArtifactoryPublisher, error) {
	if cfg.ContextURL == "" {
		return nil, errors.New("artifactory context_url is not set")
	}
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 120
	}
	client := resty.New().SetTimeout(time.Duration(timeout) * time.Second)
	if cfg.Username != "" {
		client.SetBasicAuth(cfg.Username, cfg.Password)
	}
	return &ArtifactoryPublisher{
		client:   client,
		baseURL:  strings.TrimRight(cfg.ContextURL, "/"),
		repo:     cfg.Repository,
		snapshot: cfg.SnapshotRepository,
		release:  cfg.ReleaseRepository,
	}, nil
}

// Repository returns the target repository for c.
func (p *ArtifactoryPublisher) Repository(c Coordinates) string {
	switch {
	case p.repo != "":
		return p.repo
	case c.IsSnapshot():
		return p.snapshot
	default:
		return p.release
	}
}

// Publish PUTs the artifact and returns its URL.
func (p *ArtifactoryPublisher) Publish(ctx context.Context, a Artifact) (string, error) {
	url := fmt.Sprintf("%s/%s/%s", p.baseURL, p.Repository(a.Coordinates), a.Coordinates.Path(a.Classifier, a.ext()))
	if len(a.Content) == 0 {
		return "", fmt.Errorf("uploading %s: artifact is empty", url)
	}

	sha1Sum := sha1.Sum(a.Content)
	sha256Sum := sha256.Sum256(a.Content)

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/zip").
		SetHeader("X-Checksum-Sha1", hex.EncodeToString(sha1Sum[:])).
		SetHeader("X-Checksum-Sha256", hex.EncodeToString(sha256Sum[:])).
		SetBody(a.Content).
		Put(url)
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", url, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("uploading %s: status %d: %s", url, resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return url, nil
}
