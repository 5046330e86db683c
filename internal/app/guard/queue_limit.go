package guard

import (
	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/upnext/upnext/internal/app/queue"
	"github.com/upnext/upnext/internal/domain/media"
)

// QueueLimitConfig represents the configuration for QueueLimitGuard.
type QueueLimitConfig struct {
	MaxItems int `yaml:"max_items" mapstructure:"max_items" default:"500" validate:"gte=1"`
}

// QueueLimitGuard rejects additions once the queue holds max_items entries.
type QueueLimitGuard struct {
	config *QueueLimitConfig
}

// NewQueueLimitGuard creates a new queue limit guard.
func NewQueueLimitGuard() *QueueLimitGuard {
	return &QueueLimitGuard{}
}

func (g *QueueLimitGuard) Name() string {
	return "queue_limit_guard"
}

func (g *QueueLimitGuard) Description() string {
	return "Caps the number of entries the queue may hold"
}

func (g *QueueLimitGuard) ReturnCodes() []string {
	return []string{"queue_full"}
}

func (g *QueueLimitGuard) ValidateConfig(settings map[string]any) error {
	var config QueueLimitConfig

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

	if err := defaults.Set(&config); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}

	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return errors.Wrap(err, "validation failed")
	}

	g.config = &config
	zlog.Info().Msgf("queue limit guard config: %+v", config)
	return nil
}

func (g *QueueLimitGuard) Check(state queue.State, m media.Media) Result {
	// If config is not set, accept everything
	if g.config == nil {
		return Accept()
	}

	if len(state.Items) >= g.config.MaxItems {
		return Reject("queue_full")
	}

	return Accept()
}

func init() {
	Register("queue_limit_guard", func() Guard {
		return &QueueLimitGuard{}
	})
}
