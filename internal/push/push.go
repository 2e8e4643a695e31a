// Package push adapts device push delivery: permission, device token,
// token refreshes and incoming messages.
package push

import "context"

type AuthorizationStatus int

const (
	StatusNotDetermined AuthorizationStatus = iota
	StatusDenied
	StatusAuthorized
	StatusProvisional
)

// Enabled reports whether messages may be delivered to this device.
func (s AuthorizationStatus) Enabled() bool {
	return s == StatusAuthorized || s == StatusProvisional
}

func (s AuthorizationStatus) String() string {
	switch s {
	case StatusDenied:
		return "denied"
	case StatusAuthorized:
		return "authorized"
	case StatusProvisional:
		return "provisional"
	default:
		return "not_determined"
	}
}

type MessageNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// RemoteMessage is one delivered push message. It is also the JSON body the
// gateway publishes.
type RemoteMessage struct {
	Notification *MessageNotification `json:"notification,omitempty"`
	Data         map[string]string    `json:"data,omitempty"`
}

func (m RemoteMessage) Title() string {
	if m.Notification == nil {
		return ""
	}
	return m.Notification.Title
}

func (m RemoteMessage) Body() string {
	if m.Notification == nil {
		return ""
	}
	return m.Notification.Body
}

// TokenUpdate is the payload carried on a device's token subject.
type TokenUpdate struct {
	Token string `json:"token"`
}

// Messenger is the device side of push delivery. Channels are closed by Close.
type Messenger interface {
	RequestPermission(ctx context.Context) (AuthorizationStatus, error)
	Token(ctx context.Context) (string, error)
	TokenRefreshes() <-chan string
	Messages() <-chan RemoteMessage
	Close() error
}

const bufferSize = 32
