package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/diagnosis/salon-bookings/pkg/logger"
	"github.com/nats-io/nats.go"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
	ID        string
}

// Decode unmarshals the message payload into v.
func (m *Message) Decode(v interface{}) error {
	if err := json.Unmarshal(m.Data, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", m.Subject, err)
	}
	return nil
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url, nats.Name("salon-bookings"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(wrap(msg.Subject, msg.Data))
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(wrap(msg.Subject, msg.Data))
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

func wrap(subject string, data []byte) *Message {
	return &Message{
		Subject:   subject,
		Data:      data,
		Timestamp: time.Now(),
		ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
	}
}

// Event types and subjects
const (
	// Appointment events
	AppointmentCreated   = "appointment.created"
	AppointmentCancelled = "appointment.cancelled"

	// Payment events
	PaymentProcessed      = "payment.processed"
	PaymentFailed         = "payment.failed"
	PaymentMethodAdded    = "payment_method.added"
	PaymentMethodRemoved  = "payment_method.removed"
	PaymentMethodDefaults = "payment_method.default_changed"

	// Review events
	ReviewCreated = "review.created"

	// Notification events
	NotificationCreated = "notification.created"
	DeviceRegistered    = "notification.device_registered"
)

// PushMessageSubject is where messages for one device token are delivered.
func PushMessageSubject(token string) string {
	return "push.device." + subjectToken(token)
}

// PushTokenSubject carries reissued tokens for a device.
func PushTokenSubject(token string) string {
	return PushMessageSubject(token) + ".token"
}

func subjectToken(s string) string {
	return strings.NewReplacer(".", "_", " ", "_", "*", "_", ">", "_").Replace(s)
}

// Event payloads
type AppointmentCreatedEvent struct {
	AppointmentID int64     `json:"appointment_id"`
	ClientID      int64     `json:"client_id"`
	ClientEmail   string    `json:"client_email"`
	SpecialistID  int64     `json:"specialist_id"`
	ServiceName   string    `json:"service_name"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	CreatedAt     time.Time `json:"created_at"`
}

type AppointmentCancelledEvent struct {
	AppointmentID int64     `json:"appointment_id"`
	ClientID      int64     `json:"client_id"`
	Reason        string    `json:"reason"`
	CancelledAt   time.Time `json:"cancelled_at"`
}

type PaymentProcessedEvent struct {
	PaymentID     int64   `json:"payment_id"`
	AppointmentID int64   `json:"appointment_id"`
	ClientID      int64   `json:"client_id"`
	Amount        float64 `json:"amount"`
	Mode          string  `json:"mode"`
	Status        string  `json:"status"`
	IntentID      string  `json:"intent_id,omitempty"`
}

type PaymentMethodEvent struct {
	MethodID  int64 `json:"method_id"`
	ClientID  int64 `json:"client_id"`
	IsDefault bool  `json:"is_default"`
}

type ReviewCreatedEvent struct {
	ReviewID     int64 `json:"review_id"`
	SpecialistID int64 `json:"specialist_id"`
	Rating       int   `json:"rating"`
}

type DeviceRegisteredEvent struct {
	UserID int64  `json:"user_id"`
	Token  string `json:"token"`
}

type NotificationEvent struct {
	NotificationID int64             `json:"notification_id"`
	UserID         int64             `json:"user_id"`
	Type           string            `json:"type"`
	Title          string            `json:"title"`
	Data           map[string]string `json:"data,omitempty"`
}
