package state

import (
	"database/sql"
	"errors"
	"time"
)

// SavedItem represents one queue entry on disk. Media attributes are stored
// denormalized, so a restore does not depend on the library still holding
// the asset.
type SavedItem struct {
	EntryID      string
	MediaID      string
	DisplayName  string
	ThumbnailRef string
	Kind         string
	Duration     time.Duration
	AddedAt      time.Time
}

// SavedQueue represents the saved queue state.
type SavedQueue struct {
	CurrentIndex     int
	IsPlaying        bool
	RepeatMode       string
	Shuffled         bool
	AutoAdvance      bool
	AutoAdvanceDelay time.Duration
	SavedAt          time.Time
	Items            []SavedItem
}

func loadQueue(db *sql.DB) (*SavedQueue, error) {
	var saved SavedQueue
	var savedAt int64
	var delayMs int64

	row := db.QueryRow(`
		SELECT current_index, is_playing, repeat_mode, shuffled,
		       auto_advance, auto_advance_delay_ms, saved_at
		FROM queue_state WHERE id = 1
	`)
	err := row.Scan(&saved.CurrentIndex, &saved.IsPlaying, &saved.RepeatMode,
		&saved.Shuffled, &saved.AutoAdvance, &delayMs, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// Nothing was ever saved
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	saved.AutoAdvanceDelay = time.Duration(delayMs) * time.Millisecond
	saved.SavedAt = time.Unix(savedAt, 0)

	rows, err := db.Query(`
		SELECT entry_id, media_id, display_name, thumbnail_ref, kind, duration_ms, added_at
		FROM queue_items
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item SavedItem
		var thumbnail sql.NullString
		var durationMs, addedAt int64

		err := rows.Scan(&item.EntryID, &item.MediaID, &item.DisplayName,
			&thumbnail, &item.Kind, &durationMs, &addedAt)
		if err != nil {
			return nil, err
		}

		item.ThumbnailRef = nullStringValue(thumbnail)
		item.Duration = time.Duration(durationMs) * time.Millisecond
		item.AddedAt = time.Unix(addedAt, 0)
		saved.Items = append(saved.Items, item)
	}

	return &saved, rows.Err()
}

func saveQueue(sqlDB *sql.DB, saved SavedQueue) error {
	return withTx(sqlDB, func(tx *sql.Tx) error {
		// Clear existing items
		_, err := tx.Exec(`DELETE FROM queue_items`)
		if err != nil {
			return err
		}

		_, err = tx.Exec(`
			INSERT INTO queue_state (id, current_index, is_playing, repeat_mode,
			                         shuffled, auto_advance, auto_advance_delay_ms, saved_at)
			VALUES (1, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				current_index = excluded.current_index,
				is_playing = excluded.is_playing,
				repeat_mode = excluded.repeat_mode,
				shuffled = excluded.shuffled,
				auto_advance = excluded.auto_advance,
				auto_advance_delay_ms = excluded.auto_advance_delay_ms,
				saved_at = excluded.saved_at
		`, saved.CurrentIndex, saved.IsPlaying, saved.RepeatMode, saved.Shuffled,
			saved.AutoAdvance, saved.AutoAdvanceDelay.Milliseconds(), time.Now().Unix())
		if err != nil {
			return err
		}

		stmt, err := tx.Prepare(`
			INSERT INTO queue_items (position, entry_id, media_id, display_name,
			                         thumbnail_ref, kind, duration_ms, added_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, item := range saved.Items {
			var thumbnail any
			if item.ThumbnailRef != "" {
				thumbnail = item.ThumbnailRef
			}
			_, err = stmt.Exec(i, item.EntryID, item.MediaID, item.DisplayName,
				thumbnail, item.Kind, item.Duration.Milliseconds(), item.AddedAt.Unix())
			if err != nil {
				return err
			}
		}
		return nil
	})
}
