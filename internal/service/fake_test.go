package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/diagnosis/salon-bookings/internal/api"
	"github.com/diagnosis/salon-bookings/internal/domain"
)

type call struct {
	Method string
	Path   string
	Body   any
}

// fakeAPI answers from canned responses keyed by "METHOD path". Setting
// down makes every call fail like an unreachable gateway.
type fakeAPI struct {
	mu        sync.Mutex
	calls     []call
	responses map[string]any
	statuses  map[string]int
	down      bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{responses: map[string]any{}, statuses: map[string]int{}}
}

func downAPI() *fakeAPI {
	f := newFakeAPI()
	f.down = true
	return f
}

func (f *fakeAPI) on(method, path string, v any) *fakeAPI {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[method+" "+path] = v
	return f
}

func (f *fakeAPI) status(method, path string, code int) *fakeAPI {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[method+" "+path] = code
	return f
}

func (f *fakeAPI) Get(ctx context.Context, path string, _ any, out any) error {
	return f.do(http.MethodGet, path, nil, out)
}

func (f *fakeAPI) Post(ctx context.Context, path string, body any, out any) error {
	return f.do(http.MethodPost, path, body, out)
}

func (f *fakeAPI) Delete(ctx context.Context, path string) error {
	return f.do(http.MethodDelete, path, nil, nil)
}

func (f *fakeAPI) do(method, path string, body, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{Method: method, Path: path, Body: body})

	if f.down {
		return fmt.Errorf("%w: %s %s: connection refused", api.ErrTransport, method, path)
	}
	key := method + " " + path
	if code, ok := f.statuses[key]; ok {
		return &api.StatusError{Method: method, Path: path, Code: code}
	}
	v, ok := f.responses[key]
	if !ok || out == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func (f *fakeAPI) callsTo(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

func (f *fakeAPI) lastBody(method, path string) any {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].Method == method && f.calls[i].Path == path {
			return f.calls[i].Body
		}
	}
	return nil
}

type memSession struct {
	mu    sync.Mutex
	user  *domain.User
	token string
}

func (m *memSession) Token(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memSession) User(context.Context) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil, nil
	}
	u := *m.user
	return &u, nil
}

func (m *memSession) Save(_ context.Context, user domain.User, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = &user
	m.token = token
	return nil
}

func (m *memSession) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil
	m.token = ""
	return nil
}

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func demoOpts() Options { return Options{Demo: true, Now: func() time.Time { return fixedNow }} }
func strictOpts() Options { return Options{Now: func() time.Time { return fixedNow }} }
