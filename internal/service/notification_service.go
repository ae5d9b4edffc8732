package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/markvl91/helpdesk-service/internal/config"
	"github.com/markvl91/helpdesk-service/internal/events"
)

// NotificationService turns domain events into outbound notifications.
// Delivery is currently a structured log line per event; the email and
// webhook targets come from config so a real sender can slot in.
type NotificationService struct {
	dispatcher events.Dispatcher
	cfg        config.NotificationConfig
	logger     *zap.Logger
}

// NewNotificationService builds the service.
func NewNotificationService(dispatcher events.Dispatcher, cfg config.NotificationConfig, logger *zap.Logger) *NotificationService {
	return &NotificationService{dispatcher: dispatcher, cfg: cfg, logger: logger}
}

// RegisterHandlers subscribes the service to the events worth notifying on.
func (s *NotificationService) RegisterHandlers() {
	s.dispatcher.Subscribe(events.EventTicketEscalated, s.notify)
	s.dispatcher.Subscribe(events.EventTicketClosed, s.notify)
	s.dispatcher.Subscribe(events.EventRequestCreated, s.notify)
	s.dispatcher.Subscribe(events.EventRequestStatusChanged, s.notify)
}

func (s *NotificationService) notify(ctx context.Context, event events.Event) error {
	s.logger.Info("notification dispatched",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("ticket_id", event.TicketID),
		zap.String("email_from", s.cfg.EmailFrom),
		zap.String("webhook_url", s.cfg.WebhookURL))
	return nil
}
