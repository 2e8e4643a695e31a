package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func offline(t *testing.T) {
	t.Helper()
	t.Setenv("API_BASE_URL", "http://127.0.0.1:1")
	t.Setenv("API_TIMEOUT", "1s")
	t.Setenv("STORE_BACKEND", "file")
	t.Setenv("STORE_PATH", filepath.Join(t.TempDir(), "session.json"))
	t.Setenv("PUSH_BACKEND", "none")
	t.Setenv("DEMO_MODE", "false")
}

func TestUnknownCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	assert.Equal(t, 2, run([]string{"frobnicate"}, &out, &errOut))
	assert.Contains(t, errOut.String(), `unknown command "frobnicate"`)
	assert.Contains(t, errOut.String(), "book -service ID")
}

func TestServicesInDemoMode(t *testing.T) {
	offline(t)
	var out, errOut bytes.Buffer
	require.Equal(t, 0, run([]string{"-demo", "services"}, &out, &errOut))
	assert.Contains(t, out.String(), "(demo data)")
	assert.Contains(t, out.String(), "Haircut")
	assert.Contains(t, out.String(), "Manicure")
}

func TestOfflineWithoutDemoFails(t *testing.T) {
	offline(t)
	var out, errOut bytes.Buffer
	assert.Equal(t, 1, run([]string{"services"}, &out, &errOut))
	assert.Contains(t, errOut.String(), "[error]")
	assert.Empty(t, out.String())
}

func TestLoginPersistsAcrossRuns(t *testing.T) {
	offline(t)
	var out, errOut bytes.Buffer
	require.Equal(t, 1, run([]string{"whoami"}, &out, &errOut))

	errOut.Reset()
	require.Equal(t, 0, run([]string{"-demo", "login", "-email", "john.smith@example.com", "-password", "pw"}, &out, &errOut))
	assert.Contains(t, errOut.String(), "Welcome, John Smith")

	out.Reset()
	require.Equal(t, 0, run([]string{"whoami"}, &out, &errOut))
	assert.Contains(t, out.String(), "John Smith <john.smith@example.com>")

	require.Equal(t, 0, run([]string{"logout"}, &out, &errOut))
	assert.Equal(t, 1, run([]string{"whoami"}, &out, &errOut))
}

func TestLoginFormErrorIsReportedOnce(t *testing.T) {
	offline(t)
	var out, errOut bytes.Buffer
	assert.Equal(t, 1, run([]string{"-demo", "login", "-email", "john@example.com"}, &out, &errOut))
	assert.Equal(t, 1, bytes.Count(errOut.Bytes(), []byte("[error]")))
}

func TestChatSearch(t *testing.T) {
	offline(t)
	var out, errOut bytes.Buffer
	require.Equal(t, 0, run([]string{"-demo", "chats", "-q", " LU "}, &out, &errOut))
	assert.Contains(t, out.String(), "Lucy")
	assert.NotContains(t, out.String(), "Laila")
}

func TestCancelUnknownAppointmentFails(t *testing.T) {
	offline(t)
	var out, errOut bytes.Buffer
	assert.Equal(t, 1, run([]string{"-demo", "cancel", "99"}, &out, &errOut))
	assert.Contains(t, errOut.String(), "appointment 99 not found")
	assert.NotContains(t, errOut.String(), "cancelled")
}
