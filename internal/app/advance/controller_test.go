package advance

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upnext/upnext/internal/app/queue"
	"github.com/upnext/upnext/internal/domain/media"
)

func stillMedia(id string) media.Media {
	return media.Media{ID: id, DisplayName: id, Kind: media.KindImage}
}

func videoMedia(id string) media.Media {
	return media.Media{ID: id, DisplayName: id, Kind: media.KindVideo, Duration: time.Minute}
}

func gifMedia(id string) media.Media {
	return media.Media{ID: id, DisplayName: id, Kind: media.KindGIF, Duration: 3 * time.Second}
}

func newQueue(t *testing.T, delay time.Duration, ms ...media.Media) (*queue.Store, []media.Item) {
	t.Helper()
	q := queue.New(queue.Config{
		Rand:             rand.New(rand.NewSource(1)),
		AutoAdvance:      true,
		AutoAdvanceDelay: delay,
	})
	items := q.AddAll(ms...)
	require.Len(t, items, len(ms))
	return q, items
}

func TestController_MediaEndedAdvances(t *testing.T) {
	q, items := newQueue(t, time.Minute, videoMedia("a"), gifMedia("b"))
	require.NotNil(t, q.PlayIndex(0))

	c := NewController(Config{Queue: q})
	defer c.Close()

	c.MediaEnded(items[0].ID)

	st := q.State()
	assert.Equal(t, 1, st.CurrentIndex)
	assert.True(t, st.IsPlaying)
	assert.False(t, c.DwellActive(), "animations end on their own, no dwell timer")

	// The animation runs out too: last entry, repeat none, playback stops.
	c.MediaEnded(items[1].ID)

	st = q.State()
	assert.Equal(t, 1, st.CurrentIndex)
	assert.False(t, st.IsPlaying)
}

func TestController_MediaEndedStaleSignal(t *testing.T) {
	q, items := newQueue(t, time.Minute, videoMedia("a"), videoMedia("b"), videoMedia("c"))
	require.NotNil(t, q.PlayIndex(0))

	c := NewController(Config{Queue: q})
	defer c.Close()

	// The user skips elsewhere before the old entry's end signal arrives.
	require.NotNil(t, q.PlayIndex(2))
	c.MediaEnded(items[0].ID)

	assert.Equal(t, 2, q.State().CurrentIndex)
	assert.True(t, q.State().IsPlaying)
}

func TestController_MediaEndedRequiresAutoAdvance(t *testing.T) {
	q, items := newQueue(t, time.Minute, videoMedia("a"), videoMedia("b"))
	q.SetAutoAdvance(false, 0)
	require.NotNil(t, q.PlayIndex(0))

	c := NewController(Config{Queue: q})
	defer c.Close()

	c.MediaEnded(items[0].ID)

	st := q.State()
	assert.Equal(t, 0, st.CurrentIndex)
	assert.True(t, st.IsPlaying)
}

func TestController_DwellAdvancesStillImage(t *testing.T) {
	q, _ := newQueue(t, 15*time.Millisecond, stillMedia("a"), videoMedia("b"))

	c := NewController(Config{Queue: q})
	defer c.Close()

	require.NotNil(t, q.PlayIndex(0))
	assert.True(t, c.DwellActive())

	require.Eventually(t, func() bool {
		return q.State().CurrentIndex == 1
	}, time.Second, 5*time.Millisecond, "the dwell timer must advance past the image")

	st := q.State()
	assert.True(t, st.IsPlaying)
	assert.False(t, c.DwellActive(), "a video must not arm a dwell timer")
}

func TestController_DwellChainStopsAtEnd(t *testing.T) {
	q, _ := newQueue(t, 10*time.Millisecond, stillMedia("a"), stillMedia("b"))

	c := NewController(Config{Queue: q})
	defer c.Close()

	require.NotNil(t, q.PlayIndex(0))

	// Image a dwells, advances to image b, which dwells and then hits the
	// end of the queue under repeat none.
	require.Eventually(t, func() bool {
		st := q.State()
		return st.CurrentIndex == 1 && !st.IsPlaying
	}, time.Second, 5*time.Millisecond)

	assert.False(t, c.DwellActive())
}

func TestController_StopCancelsDwell(t *testing.T) {
	q, _ := newQueue(t, 60*time.Millisecond, stillMedia("a"), stillMedia("b"))

	c := NewController(Config{Queue: q})
	defer c.Close()

	require.NotNil(t, q.PlayIndex(0))
	require.True(t, c.DwellActive())

	q.Stop()
	assert.False(t, c.DwellActive())

	// Even a timer that already fired must not advance a stopped queue.
	time.Sleep(150 * time.Millisecond)
	st := q.State()
	assert.Equal(t, 0, st.CurrentIndex)
	assert.False(t, st.IsPlaying)
}

func TestController_DisableCancelsDwell(t *testing.T) {
	q, _ := newQueue(t, 60*time.Millisecond, stillMedia("a"), stillMedia("b"))

	c := NewController(Config{Queue: q})
	defer c.Close()

	require.NotNil(t, q.PlayIndex(0))
	require.True(t, c.DwellActive())

	q.SetAutoAdvance(false, 0)
	assert.False(t, c.DwellActive())

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 0, q.State().CurrentIndex)
}

func TestController_UnrelatedMutationKeepsTimer(t *testing.T) {
	q, _ := newQueue(t, time.Minute, stillMedia("a"))

	c := NewController(Config{Queue: q})
	defer c.Close()

	require.NotNil(t, q.PlayIndex(0))
	require.True(t, c.DwellActive())

	q.Add(videoMedia("b"))
	q.MoveItem(0, 1)

	assert.True(t, c.DwellActive(), "edits around the image must not kill its dwell")
}

func TestController_VideoDoesNotArm(t *testing.T) {
	q, _ := newQueue(t, time.Minute, videoMedia("a"))

	c := NewController(Config{Queue: q})
	defer c.Close()

	require.NotNil(t, q.PlayIndex(0))
	assert.False(t, c.DwellActive())
}

func TestController_ArmsOnExistingPlayback(t *testing.T) {
	q, _ := newQueue(t, time.Minute, stillMedia("a"))
	require.NotNil(t, q.PlayIndex(0))

	// The image was already current before the controller attached.
	c := NewController(Config{Queue: q})
	defer c.Close()

	assert.True(t, c.DwellActive())
}

func TestController_Close(t *testing.T) {
	q, items := newQueue(t, time.Minute, stillMedia("a"), videoMedia("b"))

	c := NewController(Config{Queue: q})
	require.NotNil(t, q.PlayIndex(0))
	require.True(t, c.DwellActive())

	c.Close()
	assert.False(t, c.DwellActive())

	// Detached: neither signals nor queue changes reach the controller.
	c.MediaEnded(items[0].ID)
	assert.Equal(t, 0, q.State().CurrentIndex)

	require.NotNil(t, q.PlayIndex(0))
	assert.False(t, c.DwellActive())

	c.Close()
}
