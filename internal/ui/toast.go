// Package ui holds presentation state shared by every screen.
package ui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Toast timing: fade in, hold, fade out.
const (
	FadeIn   = 300 * time.Millisecond
	Hold     = 2 * time.Second
	FadeOut  = 300 * time.Millisecond
	Lifetime = FadeIn + Hold + FadeOut
)

type Toast struct {
	Message string
	Kind    Kind
	Shown   time.Time
}

// Toaster keeps at most one visible toast and echoes each one to out.
type Toaster struct {
	mu      sync.Mutex
	out     io.Writer
	now     func() time.Time
	current *Toast
}

func NewToaster(out io.Writer, now func() time.Time) *Toaster {
	if now == nil {
		now = time.Now
	}
	return &Toaster{out: out, now: now}
}

// Show replaces any visible toast.
func (t *Toaster) Show(kind Kind, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = &Toast{Message: msg, Kind: kind, Shown: t.now()}
	if t.out != nil {
		fmt.Fprintf(t.out, "[%s] %s\n", kind, msg)
	}
}

func (t *Toaster) Success(msg string) { t.Show(KindSuccess, msg) }
func (t *Toaster) Error(msg string) { t.Show(KindError, msg) }
func (t *Toaster) Info(msg string) { t.Show(KindInfo, msg) }

// Visible returns the toast on screen, or nil once it has been dismissed.
func (t *Toaster) Visible() *Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return nil
	}
	if t.now().Sub(t.current.Shown) >= Lifetime {
		t.current = nil
		return nil
	}
	cp := *t.current
	return &cp
}
