package publish

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"crowdin-distributor/core/resource"

	"github.com/spf13/afero"
)

// Coordinates identify the published artifact.
type Coordinates struct {
	Group    string `json:"group"`
	Artifact string `json:"artifact"`
	Version  string `json:"version"`
}

// IsSnapshot reports whether Version is a snapshot version.
func (c Coordinates) IsSnapshot() bool {
	return strings.Contains(c.Version, "SNAPSHOT")
}

// FileName returns the artifact file name for classifier and extension.
func (c Coordinates) FileName(classifier, ext string) string {
	name := c.Artifact + "-" + c.Version
	if classifier != "" {
		name += "-" + classifier
	}
	return name + "." + ext
}

// Path returns the Maven layout path of the artifact file.
func (c Coordinates) Path(classifier, ext string) string {
	return strings.Join([]string{
		strings.ReplaceAll(c.Group, ".", "/"),
		c.Artifact,
		c.Version,
		c.FileName(classifier, ext),
	}, "/")
}

func (c Coordinates) validate() error {
	var errs []error
	if c.Group == "" {
		errs = append(errs, errors.New("group is not set"))
	}
	if c.Artifact == "" {
		errs = append(errs, errors.New("artifact is not set"))
	}
	if c.Version == "" {
		errs = append(errs, errors.New("version is not set"))
	}
	return errors.Join(errs...)
}

// ResolveCoordinates merges configured coordinates with the group and version
// properties of cfg.PropertiesFile. Configured values win.
func ResolveCoordinates(fs afero.Fs, cfg Config) (Coordinates, error) {
	c := Coordinates{Group: cfg.GroupID, Artifact: cfg.ArtifactID, Version: cfg.Version}

	if (c.Group == "" || c.Version == "") && cfg.PropertiesFile != "" {
		props, err := readProperties(fs, cfg.PropertiesFile)
		if err != nil {
			return Coordinates{}, err
		}
		if c.Group == "" {
			c.Group = props["group"]
		}
		if c.Version == "" {
			c.Version = props["version"]
		}
	}

	if err := c.validate(); err != nil {
		return Coordinates{}, fmt.Errorf("resolving artifact coordinates: %w", err)
	}
	return c, nil
}

func readProperties(fs afero.Fs, path string) (map[string]string, error) {
	data, err := afero.ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	pairs, err := resource.NewPropertiesParser().Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		out[p.Key] = p.Value
	}
	return out, nil
}
