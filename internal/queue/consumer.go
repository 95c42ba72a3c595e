package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/peakform/trainer-crm/internal/integration"
	"github.com/peakform/trainer-crm/internal/utils"
)

// Consumer drains the notification queue and dispatches email and SMS
// through the configured adapters.
type Consumer struct {
	url    string
	mailer *integration.Mailer
	sms    *integration.SMSSender
	log    *zap.Logger
}

// NewConsumer returns a Consumer.  An empty URL yields a disabled
// consumer whose Run returns immediately.
func NewConsumer(url string, mailer *integration.Mailer, sms *integration.SMSSender, log *zap.Logger) *Consumer {
	return &Consumer{url: url, mailer: mailer, sms: sms, log: log}
}

// Run connects to the broker, declares the durable notification queue
// and consumes it until the process exits.  Connection failures back
// off exponentially up to 30s; a failed message is rejected without
// requeue so one poison message cannot spin the loop.
func (c *Consumer) Run() {
	if c.url == "" {
		c.log.Info("notification consumer disabled: no broker URL")
		return
	}

	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("notification consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := c.consumeLoop(conn); err != nil {
			c.log.Warn("notification consumer: loop ended, reconnecting", zap.Error(err))
			_ = conn.Close()
			time.Sleep(2 * time.Second)
		}
	}
}

func (c *Consumer) consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("notification consumer: set QoS failed", zap.Error(err))
	}

	if _, err := ch.QueueDeclare(NotificationQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(NotificationQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := c.handle(d.Body); err != nil {
			c.log.Error("notification consumer: handle failed", zap.Error(err))
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func (c *Consumer) handle(body []byte) error {
	var ev NotificationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	switch ev.Kind {
	case KindBookingRequested:
		return c.email(ev.TrainerName, ev.TrainerEmail,
			"New booking request",
			fmt.Sprintf("%s requested a session on %s at %s (ref %s).",
				ev.RecipientName, ev.RequestedDate, ev.RequestedTime, ev.BookingReference))
	case KindBookingConfirmed:
		return c.email(ev.RecipientName, ev.RecipientEmail,
			"Booking confirmed",
			fmt.Sprintf("Your session on %s at %s is confirmed (ref %s).",
				ev.RequestedDate, ev.RequestedTime, ev.BookingReference))
	case KindBookingDeclined:
		msg := fmt.Sprintf("Your booking request for %s at %s was declined.", ev.RequestedDate, ev.RequestedTime)
		if ev.DeclineReason != "" {
			msg += " Reason: " + ev.DeclineReason
		}
		return c.email(ev.RecipientName, ev.RecipientEmail, "Booking declined", msg)
	case KindBookingCancelled:
		return c.email(ev.RecipientName, ev.RecipientEmail,
			"Booking cancelled",
			fmt.Sprintf("Your session on %s at %s was cancelled (ref %s).",
				ev.RequestedDate, ev.RequestedTime, ev.BookingReference))
	case KindSessionReminder:
		return c.email(ev.RecipientName, ev.RecipientEmail,
			"Session reminder",
			fmt.Sprintf("Reminder: %s on %s at %s.", ev.SessionTitle, ev.RequestedDate, ev.RequestedTime))
	case KindDirectEmail:
		return c.email(ev.RecipientName, ev.RecipientEmail, ev.Subject, ev.Body)
	case KindDirectSMS:
		return c.text(ev.RecipientPhone, ev.Body)
	}
	return fmt.Errorf("unknown event kind %q", ev.Kind)
}

func (c *Consumer) email(name, addr, subject, body string) error {
	if addr == "" {
		return nil
	}
	if !c.mailer.Enabled() {
		c.log.Info("email skipped: mailer not configured", zap.String("subject", subject))
		return nil
	}
	if err := c.mailer.Send(name, addr, subject, body); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	c.log.Info("email sent", zap.String("subject", subject))
	return nil
}

func (c *Consumer) text(phone, body string) error {
	if phone == "" {
		return nil
	}
	if !c.sms.Enabled() {
		c.log.Info("sms skipped: sender not configured")
		return nil
	}
	if err := c.sms.Send(phone, body); err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	c.log.Info("sms sent", zap.Int("segments", utils.SMSSegments(body)))
	return nil
}
