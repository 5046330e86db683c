package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upnext/upnext/internal/domain/media"
)

func TestRepeatMode_String(t *testing.T) {
	tests := []struct {
		name string
		mode RepeatMode
		want string
	}{
		{name: "none", mode: RepeatNone, want: "none"},
		{name: "one", mode: RepeatOne, want: "one"},
		{name: "all", mode: RepeatAll, want: "all"},
		{name: "unknown value", mode: RepeatMode(42), want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.mode.String())
		})
	}
}

func TestParseRepeatMode(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		for _, mode := range []RepeatMode{RepeatNone, RepeatOne, RepeatAll} {
			parsed, err := ParseRepeatMode(mode.String())
			require.NoError(t, err)
			assert.Equal(t, mode, parsed)
		}
	})

	t.Run("unknown string", func(t *testing.T) {
		_, err := ParseRepeatMode("shuffle")
		assert.Error(t, err)
	})
}

func TestOp_String(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{op: OpAdd, want: "add"},
		{op: OpRemove, want: "remove"},
		{op: OpClear, want: "clear"},
		{op: OpCursor, want: "cursor"},
		{op: OpMove, want: "move"},
		{op: OpShuffle, want: "shuffle"},
		{op: OpSettings, want: "settings"},
		{op: Op(42), want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.op.String())
		})
	}
}

func TestState_Current(t *testing.T) {
	items := []media.Item{
		{ID: "q1", Media: media.Media{ID: "m1", DisplayName: "A"}},
		{ID: "q2", Media: media.Media{ID: "m2", DisplayName: "B"}},
	}

	tests := []struct {
		name         string
		state        State
		wantID       string
		wantSelected bool
	}{
		{name: "nothing selected", state: State{Items: items, CurrentIndex: -1}},
		{name: "first entry", state: State{Items: items, CurrentIndex: 0}, wantID: "q1", wantSelected: true},
		{name: "last entry", state: State{Items: items, CurrentIndex: 1}, wantID: "q2", wantSelected: true},
		{name: "out of range", state: State{Items: items, CurrentIndex: 2}},
		{name: "empty queue", state: State{CurrentIndex: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := tt.state.Current()
			if !tt.wantSelected {
				assert.Nil(t, current)
				return
			}
			require.NotNil(t, current)
			assert.Equal(t, tt.wantID, current.ID)
		})
	}
}

func TestState_UpNext(t *testing.T) {
	items := []media.Item{
		{ID: "q1"}, {ID: "q2"}, {ID: "q3"}, {ID: "q4"},
	}

	tests := []struct {
		name    string
		state   State
		n       int
		wantIDs []string
	}{
		{name: "following the cursor", state: State{Items: items, CurrentIndex: 1}, n: 2, wantIDs: []string{"q3", "q4"}},
		{name: "clipped at the end", state: State{Items: items, CurrentIndex: 2}, n: 5, wantIDs: []string{"q4"}},
		{name: "cursor on last entry", state: State{Items: items, CurrentIndex: 3}, n: 2, wantIDs: nil},
		{name: "nothing selected", state: State{Items: items, CurrentIndex: -1}, n: 2, wantIDs: []string{"q1", "q2"}},
		{name: "zero count", state: State{Items: items, CurrentIndex: 0}, n: 0, wantIDs: nil},
		{name: "empty queue", state: State{CurrentIndex: -1}, n: 3, wantIDs: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := tt.state.UpNext(tt.n)
			ids := make([]string, 0, len(next))
			for _, item := range next {
				ids = append(ids, item.ID)
			}
			if tt.wantIDs == nil {
				assert.Empty(t, ids)
				return
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestState_LenAndIsEmpty(t *testing.T) {
	empty := State{CurrentIndex: -1}
	assert.Equal(t, 0, empty.Len())
	assert.True(t, empty.IsEmpty())

	filled := State{Items: []media.Item{{ID: "q1"}}, CurrentIndex: 0}
	assert.Equal(t, 1, filled.Len())
	assert.False(t, filled.IsEmpty())
}
