// Package notify keeps a polled snapshot of admin notifications and applies
// the optimistic "apply locally, confirm remotely, reconcile on mismatch"
// protocol for read-state changes: the local patch is reverted when the
// platform call fails, and the next successful poll is authoritative either
// way.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mymind1423/interflow-admin/internal/metrics"
	"github.com/mymind1423/interflow-admin/internal/platform"
	"github.com/mymind1423/interflow-admin/internal/poll"
)

type Center struct {
	api    *platform.API
	poller *poll.Poller[[]platform.Notification]

	mu    sync.Mutex
	local []platform.Notification
}

func NewCenter(api *platform.API, interval time.Duration, logger *slog.Logger, m *metrics.Metrics) *Center {
	c := &Center{api: api}
	c.poller = poll.New("notifications", interval, func(ctx context.Context) ([]platform.Notification, error) {
		list, err := api.GetNotifications(ctx)
		if err != nil {
			return nil, err
		}
		c.replace(list)
		return list, nil
	}, logger, poll.WithMetrics[[]platform.Notification](m))
	return c
}

func (c *Center) Start(ctx context.Context) { c.poller.Start(ctx) }
func (c *Center) Stop()                     { c.poller.Stop() }

// RefreshNow forces an out-of-band reconciling fetch.
func (c *Center) RefreshNow(ctx context.Context) { c.poller.RefreshNow(ctx) }

// Notifications returns a copy of the current snapshot.
func (c *Center) Notifications() []platform.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]platform.Notification, len(c.local))
	copy(out, c.local)
	return out
}

// Unread counts unread notifications in the current snapshot.
func (c *Center) Unread() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, n := range c.local {
		if !n.IsRead {
			count++
		}
	}
	return count
}

// LastFetchedAt reports when the snapshot was last confirmed by the platform.
func (c *Center) LastFetchedAt() time.Time {
	_, at, _ := c.poller.Snapshot()
	return at
}

// MarkRead marks one notification read: locally first, then upstream. A
// failed upstream call reverts the local patch.
func (c *Center) MarkRead(ctx context.Context, id string) error {
	if !c.patch(id, true) {
		return nil // unknown or already read; nothing to do
	}
	if _, err := c.api.MarkNotificationRead(ctx, id); err != nil {
		c.patch(id, false)
		return err
	}
	return nil
}

// MarkAllRead marks every notification read with the same discipline; on
// failure the previous read flags are restored.
func (c *Center) MarkAllRead(ctx context.Context) error {
	previous := c.patchAll()
	if len(previous) == 0 {
		return nil
	}
	if _, err := c.api.MarkAllNotificationsRead(ctx); err != nil {
		c.restore(previous)
		return err
	}
	return nil
}

func (c *Center) replace(list []platform.Notification) {
	copied := make([]platform.Notification, len(list))
	copy(copied, list)
	c.mu.Lock()
	c.local = copied
	c.mu.Unlock()
}

func (c *Center) patch(id string, read bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.local {
		if c.local[i].ID == id && c.local[i].IsRead != read {
			c.local[i].IsRead = read
			return true
		}
	}
	return false
}

// patchAll marks everything read and returns the ids that were unread.
func (c *Center) patchAll() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var changed []string
	for i := range c.local {
		if !c.local[i].IsRead {
			c.local[i].IsRead = true
			changed = append(changed, c.local[i].ID)
		}
	}
	return changed
}

func (c *Center) restore(ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	unread := make(map[string]bool, len(ids))
	for _, id := range ids {
		unread[id] = true
	}
	for i := range c.local {
		if unread[c.local[i].ID] {
			c.local[i].IsRead = false
		}
	}
}
