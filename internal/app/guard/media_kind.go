package guard

import (
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/upnext/upnext/internal/app/queue"
	"github.com/upnext/upnext/internal/domain/media"
)

// MediaKindConfig represents the configuration for MediaKindGuard.
// An empty allowed list permits every kind.
type MediaKindConfig struct {
	Allowed []string `yaml:"allowed" mapstructure:"allowed" validate:"dive,oneof=video image gif"`
}

// MediaKindGuard rejects media whose kind is not in the allowed list.
type MediaKindGuard struct {
	config *MediaKindConfig
}

// NewMediaKindGuard creates a new media kind guard.
func NewMediaKindGuard() *MediaKindGuard {
	return &MediaKindGuard{}
}

func (g *MediaKindGuard) Name() string {
	return "media_kind_guard"
}

func (g *MediaKindGuard) Description() string {
	return "Restricts which media kinds may be queued"
}

func (g *MediaKindGuard) ReturnCodes() []string {
	return []string{"kind_not_allowed"}
}

func (g *MediaKindGuard) ValidateConfig(settings map[string]any) error {
	var config MediaKindConfig

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &config,
		TagName: "mapstructure",
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}

	if err := decoder.Decode(settings); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}

	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return errors.Wrap(err, "validation failed")
	}

	g.config = &config
	zlog.Info().Msgf("media kind guard config: %+v", config)
	return nil
}

func (g *MediaKindGuard) Check(state queue.State, m media.Media) Result {
	// If config is not set or the list is empty, accept every kind
	if g.config == nil || len(g.config.Allowed) == 0 {
		return Accept()
	}

	kind := m.Kind.String()
	for _, allowed := range g.config.Allowed {
		if allowed == kind {
			return Accept()
		}
	}

	return Reject("kind_not_allowed")
}

func init() {
	Register("media_kind_guard", func() Guard {
		return &MediaKindGuard{}
	})
}
