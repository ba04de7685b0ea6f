package packaging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Metadata is the distribution metadata rendered by the metadata step.
type Metadata struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	License      string   `json:"license,omitempty"`
	Description  string   `json:"description,omitempty"`
	Homepage     string   `json:"homepage,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
	Requirements []string `json:"requirements,omitempty"`
}

// Metadata gathers name, version and requirements from the project files.
func (p *Project) Metadata() (Metadata, error) {
	version, err := p.Version()
	if err != nil {
		return Metadata{}, err
	}
	requirements, err := p.Requirements()
	if err != nil {
		return Metadata{}, err
	}
	return Metadata{
		Name:         p.manifest.Name,
		Version:      version,
		License:      p.manifest.License,
		Description:  p.manifest.Description,
		Homepage:     p.manifest.Homepage,
		Keywords:     p.manifest.Keywords,
		Requirements: requirements,
	}, nil
}

// WriteMetadata renders metadata.json under the build directory and returns
// its path.
func (p *Project) WriteMetadata() (string, error) {
	meta, err := p.Metadata()
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("packaging: encode metadata: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(p.buildDir(), 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(p.buildDir(), "metadata.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("packaging: write metadata (%s): %w", path, err)
	}
	log.Info().Str("path", path).Str("version", meta.Version).Msg("metadata written")
	return path, nil
}
