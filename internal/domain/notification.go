package domain

import (
	"strconv"
	"time"
)

type NotificationType string

const (
	NotificationAppointment NotificationType = "appointment"
	NotificationPayment     NotificationType = "payment"
	NotificationReview      NotificationType = "review"
	NotificationSystem      NotificationType = "system"
)

func ParseNotificationType(s string) (NotificationType, bool) {
	switch NotificationType(s) {
	case NotificationAppointment, NotificationPayment, NotificationReview, NotificationSystem:
		return NotificationType(s), true
	default:
		return "", false
	}
}

// DefaultNotificationTitle is used when a pushed message carries no title.
const DefaultNotificationTitle = "New notification"

type Notification struct {
	ID      int64             `json:"id"`
	Title   string            `json:"title"`
	Message string            `json:"message"`
	Date    string            `json:"date"`
	Read    bool              `json:"read"`
	Type    NotificationType  `json:"type"`
	Data    *NotificationData `json:"data,omitempty"`
}

// NotificationData points at the entity a notification is about.
type NotificationData struct {
	AppointmentID *int64 `json:"appointment_id,omitempty"`
	PaymentID     *int64 `json:"payment_id,omitempty"`
	ReviewID      *int64 `json:"review_id,omitempty"`
}

// Keys used in push message data maps.
const (
	DataKeyType          = "type"
	DataKeyAppointmentID = "appointmentId"
	DataKeyPaymentID     = "paymentId"
	DataKeyReviewID      = "reviewId"
)

// ParseNotificationData copies the typed references out of a push data map.
// It returns nil when the map carries none of them.
func ParseNotificationData(data map[string]string) *NotificationData {
	var out NotificationData
	found := false
	parse := func(key string) *int64 {
		v, ok := data[key]
		if !ok {
			return nil
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil
		}
		found = true
		return &n
	}
	out.AppointmentID = parse(DataKeyAppointmentID)
	out.PaymentID = parse(DataKeyPaymentID)
	out.ReviewID = parse(DataKeyReviewID)
	if !found {
		return nil
	}
	return &out
}

// Map is the inverse of ParseNotificationData.
func (d *NotificationData) Map() map[string]string {
	out := map[string]string{}
	if d == nil {
		return out
	}
	if d.AppointmentID != nil {
		out[DataKeyAppointmentID] = strconv.FormatInt(*d.AppointmentID, 10)
	}
	if d.PaymentID != nil {
		out[DataKeyPaymentID] = strconv.FormatInt(*d.PaymentID, 10)
	}
	if d.ReviewID != nil {
		out[DataKeyReviewID] = strconv.FormatInt(*d.ReviewID, 10)
	}
	return out
}

// IncomingNotification builds the record for a message delivered by push.
func IncomingNotification(now time.Time, title, body string, data map[string]string) Notification {
	if title == "" {
		title = DefaultNotificationTitle
	}
	typ, ok := ParseNotificationType(data[DataKeyType])
	if !ok {
		typ = NotificationSystem
	}
	return Notification{
		ID:      now.UnixMilli(),
		Title:   title,
		Message: body,
		Date:    now.UTC().Format(time.RFC3339),
		Read:    false,
		Type:    typ,
		Data:    ParseNotificationData(data),
	}
}

// CountUnread returns how many notifications have not been read.
func CountUnread(ns []Notification) int {
	n := 0
	for _, x := range ns {
		if !x.Read {
			n++
		}
	}
	return n
}

func Int64(v int64) *int64 { return &v }
