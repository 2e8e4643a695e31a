package mailer

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/diagnosis/salon-bookings/pkg/logger"
	"github.com/google/uuid"
)

// Dev prints mails instead of sending them and keeps the last ones for
// inspection.
type Dev struct {
	out io.Writer

	mu   sync.Mutex
	sent []Email
}

func NewDev(out io.Writer) *Dev {
	return &Dev{out: out}
}

func (d *Dev) Send(ctx context.Context, e Email) (string, error) {
	id := uuid.NewString()
	logger.InfoContext(ctx, "[DEV MAIL] "+e.Subject, "to", e.ToEmail, "message_id", id)

	if d.out != nil {
		fmt.Fprintf(d.out, "\n"+
			"━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n"+
			"To: %s (%s)\n"+
			"Subject: %s\n\n"+
			"%s\n"+
			"━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n",
			e.ToEmail, e.ToName, e.Subject, e.Text)
	}

	d.mu.Lock()
	d.sent = append(d.sent, e)
	d.mu.Unlock()
	return id, nil
}

func (d *Dev) Sent() []Email {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Email(nil), d.sent...)
}
