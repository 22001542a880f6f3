package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"booktime-be/internal/config"
	"booktime-be/internal/logger"
	"booktime-be/internal/metrics"
)

type Event string

const (
	EventSignup         Event = "SIGNUP"
	EventOrderPlaced    Event = "ORDER_PLACED"
	EventContactMessage Event = "CONTACT_MESSAGE"
)

type Payload map[string]string

// Dispatcher fans lifecycle events out to email. Delivery is best
// effort: failures are logged and counted, never returned to the
// caller.
type Dispatcher interface {
	Notify(ctx context.Context, event Event, payload Payload)
}

type dispatcher struct {
	sender       Sender
	siteEmail    string
	serviceEmail string
}

func NewDispatcher(sender Sender, cfg *config.Config) Dispatcher {
	return &dispatcher{
		sender:       sender,
		siteEmail:    cfg.SiteEmail,
		serviceEmail: cfg.ServiceEmail,
	}
}

func (d *dispatcher) Notify(ctx context.Context, event Event, payload Payload) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "notification"),
		zap.String("event", string(event)),
	)

	to, subject, body, ok := d.compose(event, payload)
	if !ok {
		log.Warn("unknown notification event, dropping")
		return
	}

	if err := d.sender.Send(ctx, to, subject, body); err != nil {
		metrics.NotifyFailures.Inc()
		log.Error("notification delivery failed", zap.Error(err))
		return
	}

	log.Info("notification sent", zap.Strings("to", to))
}

func (d *dispatcher) compose(event Event, payload Payload) (to []string, subject, body string, ok bool) {
	switch event {
	case EventSignup:
		return []string{payload["email"]},
			"Welcome to BookTime",
			"Welcome to BookTime! Your account is ready.",
			true

	case EventOrderPlaced:
		return []string{payload["email"]},
			"Your order is being processed",
			fmt.Sprintf("Thank you for your order. Your order number is %s.", payload["order_id"]),
			true

	case EventContactMessage:
		return []string{d.serviceEmail},
			"Site message received",
			fmt.Sprintf("From site (%s)\n\n%s", payload["name"], payload["message"]),
			true
	}

	return nil, "", "", false
}
