package health

import (
	"context"
	"errors"

	"github.com/sable-voice/sable/internal/history"
)

// HistoryProbe reports whether the conversation log can be queried. A probe
// round-trips a one-row read so a wedged or deleted database file is caught.
func HistoryProbe(store history.Store) Probe {
	return func(ctx context.Context) error {
		if store == nil {
			return errors.New("history store not configured")
		}
		_, err := store.Recent(ctx, 1)
		return err
	}
}
