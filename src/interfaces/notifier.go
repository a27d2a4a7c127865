package interfaces

import "market-buzz/src/models"

// -----------------------------------------------------------------------------
// INotifier delivers user facing notifications (fetch failures, refresh
// results) to whoever is listening.
// -----------------------------------------------------------------------------

type INotifier interface {
	Notify(n models.MNotification)
}
