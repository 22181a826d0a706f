package memory

import (
	"context"
	"sync"

	"github.com/Apurer/go-adoption-filters/internal/domains/filters/ports"
)

var _ ports.Notifier = (*Notifier)(nil)

// Notifier records alerts for inspection.
type Notifier struct {
	mu     sync.Mutex
	alerts []ports.Alert
}

// NewNotifier constructs an empty recorder.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Alert records the alert.
func (n *Notifier) Alert(_ context.Context, alert ports.Alert) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert)
}

// Alerts returns the recorded alerts.
func (n *Notifier) Alerts() []ports.Alert {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]ports.Alert{}, n.alerts...)
}
