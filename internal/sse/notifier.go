package sse

import (
	"time"

	"github.com/GTDGit/prize_address/internal/refdata"
)

// RefDataNotifier is called after every reference data publish.
type RefDataNotifier interface {
	NotifyPublished(snap *refdata.Snapshot)
}

// HubNotifier implements RefDataNotifier using the SSE Hub.
type HubNotifier struct {
	hub *Hub
	now func() time.Time
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub, now: time.Now}
}

func (n *HubNotifier) NotifyPublished(snap *refdata.Snapshot) {
	if snap == nil || n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(&RefDataEvent{
		Event:     EventRefDataPublished,
		Complete:  snap.AllLoaded(),
		Datasets:  snap.Statuses(),
		Timestamp: n.now(),
	})
}

// NopNotifier is a no-op implementation for when SSE is not needed.
type NopNotifier struct{}

func (NopNotifier) NotifyPublished(*refdata.Snapshot) {}
