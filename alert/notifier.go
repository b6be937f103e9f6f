package alert

import (
	"context"
	"log"
	"time"

	"golang.org/x/time/rate"
)

type Mailer interface {
	SendToAll(ctx context.Context, subject, content string) error
}

// Notifier mails alerts about the monitor itself failing. Alerts are
// suppressed to at most one per window so a persistent outage does not
// flood the recipients.
type Notifier struct {
	mailer  Mailer
	limiter *rate.Limiter
}

func NewNotifier(mailer Mailer, window time.Duration) *Notifier {
	return &Notifier{
		mailer:  mailer,
		limiter: rate.NewLimiter(rate.Every(window), 1),
	}
}

// NotifyError reports a monitor failure. Returns true if an alert mail
// was attempted, false if it was suppressed by the window.
func (n *Notifier) NotifyError(ctx context.Context, monitorErr error) bool {
	if !n.limiter.Allow() {
		return false
	}
	err := n.mailer.SendToAll(ctx, "Monitor Error", monitorErr.Error())
	if err != nil {
		log.Printf("[ERROR] sending monitor alert: %v", err)
	}
	return true
}
