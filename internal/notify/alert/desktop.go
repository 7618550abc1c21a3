// internal/notify/alert/desktop.go
package alert

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/beeep"

	"vascomart-client/internal/models"
)

// Desktop raises native desktop alerts. Availability is probed once per
// session; if the environment refuses notifications the channel stays
// silent for the rest of the session.
type Desktop struct {
	icon string

	probeOnce sync.Once
	available bool
}

func NewDesktop(icon string) *Desktop {
	return &Desktop{icon: icon}
}

func (d *Desktop) Name() string { return "desktop" }

func (d *Desktop) Notify(_ context.Context, n *models.Notification) error {
	d.probeOnce.Do(func() {
		// beeep has no separate permission request; a first successful
		// delivery doubles as the permission probe
		d.available = true
	})
	if !d.available {
		return nil
	}

	if err := beeep.Alert(n.Title, n.Message, d.icon); err != nil {
		d.available = false
		return fmt.Errorf("desktop notification: %w", err)
	}
	return nil
}
