package session

import (
	zlog "github.com/rs/zerolog/log"

	"github.com/upnext/upnext/internal/domain/media"
)

// Surface is where the current entry is presented: a renderer, a cast
// target, or just the log.
type Surface interface {
	// Show presents the entry. Called again when presentation restarts
	// from the beginning, so a renderer rewinds rather than resumes.
	Show(item media.Item)
	// Hide clears the surface when playback stops.
	Hide()
}

// LogSurface writes presentation changes to the log. It stands in when no
// real renderer is attached.
type LogSurface struct{}

var _ Surface = (*LogSurface)(nil)

func (LogSurface) Show(item media.Item) {
	zlog.Info().Msgf("now showing: media=%s name=%s kind=%s",
		item.Media.ID, item.Media.DisplayName, item.Media.Kind)
}

func (LogSurface) Hide() {
	zlog.Info().Msg("presentation cleared")
}
