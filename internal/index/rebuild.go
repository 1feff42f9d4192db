package index

import (
	"log/slog"

	"github.com/starford/dagaz/internal/event"
)

// Rebuild brings the index in line with the in-memory store:
//   - every resident event is upserted under its current fingerprint
//   - rows whose fingerprint no longer exists in the store are deleted
func Rebuild(db *DB, st *event.Store, logger *slog.Logger) error {
	indexed, err := db.AllFingerprints()
	if err != nil {
		return err
	}

	live := make(map[string]struct{}, st.Len())
	for _, ev := range st.All() {
		fp := event.Fingerprint(ev)
		live[fp] = struct{}{}
		row := EventRow{
			Fingerprint: fp,
			EventID:     ev.ID,
			Day:         ev.Day,
			Note:        ev.Note,
			Message:     ev.Message,
		}
		if err := db.UpsertEvent(row); err != nil {
			logger.Warn("rebuild: upsert failed", slog.String("fingerprint", fp), slog.String("error", err.Error()))
		}
	}

	// Remove stale entries.
	for fp := range indexed {
		if _, ok := live[fp]; !ok {
			if err := db.DeleteEvent(fp); err != nil {
				logger.Warn("rebuild: delete failed", slog.String("fingerprint", fp), slog.String("error", err.Error()))
			} else {
				logger.Debug("rebuild: removed stale", slog.String("fingerprint", fp))
			}
		}
	}

	return nil
}
