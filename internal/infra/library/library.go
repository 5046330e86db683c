// Package library loads the media library from a YAML manifest.
package library

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/upnext/upnext/internal/domain/media"
)

// Entry represents one media asset in the manifest.
type Entry struct {
	ID          string `yaml:"id" validate:"required"`
	Name        string `yaml:"name" validate:"required"`
	Kind        string `yaml:"kind" validate:"required,oneof=video image gif"`
	DurationSec int    `yaml:"duration_sec" validate:"gte=0"`
	Thumbnail   string `yaml:"thumbnail"`
}

// Manifest represents the manifest file layout.
type Manifest struct {
	Media []Entry `yaml:"media" validate:"required,min=1,dive"`
}

// Load reads a manifest file and returns the media it describes, in file
// order. Duplicate ids are an error.
func Load(path string) ([]media.Media, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read manifest")
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrap(err, "failed to parse manifest")
	}

	validate := validator.New()
	if err := validate.Struct(manifest); err != nil {
		return nil, errors.Wrap(err, "manifest validation failed")
	}

	seen := make(map[string]bool, len(manifest.Media))
	ms := make([]media.Media, 0, len(manifest.Media))
	for _, e := range manifest.Media {
		if seen[e.ID] {
			return nil, errors.Newf("duplicate media id in manifest: %s", e.ID)
		}
		seen[e.ID] = true

		kind, err := media.ParseKind(e.Kind)
		if err != nil {
			return nil, errors.Wrapf(err, "media %s", e.ID)
		}

		ms = append(ms, media.Media{
			ID:           e.ID,
			DisplayName:  e.Name,
			ThumbnailRef: e.Thumbnail,
			Kind:         kind,
			Duration:     time.Duration(e.DurationSec) * time.Second,
		})
	}

	return ms, nil
}
