package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStart(t *testing.T) {
	assert.Equal(t, Main, Start(true))
	assert.Equal(t, Login, Start(false))
}

func TestNavigateRequiresParams(t *testing.T) {
	n := NewNavigator(Main)

	err := n.Navigate(AppointmentDetails, Params{})
	assert.ErrorIs(t, err, ErrMissingParam)
	assert.Equal(t, 1, n.Depth())

	require.NoError(t, n.Navigate(AppointmentDetails, Params{AppointmentID: 3}))
	assert.Equal(t, int64(3), n.Current().Params.AppointmentID)

	assert.ErrorIs(t, n.Navigate("Nowhere", Params{}), ErrUnknownRoute)
}

func TestStackAndTabs(t *testing.T) {
	n := NewNavigator(Main)
	assert.Equal(t, "Main/Home", n.Current().String())

	require.NoError(t, n.SelectTab(TabAppointments))
	require.NoError(t, n.Navigate(AppointmentBooking, Params{}))
	assert.ErrorIs(t, n.SelectTab(TabProfile), ErrNotOnMainTabs)

	require.NoError(t, n.Replace(Payment, Params{}))
	assert.Equal(t, Payment, n.Current().Route)

	assert.True(t, n.Back())
	assert.Equal(t, TabAppointments, n.Current().Tab)
	assert.False(t, n.Back())

	require.NoError(t, n.Reset(Login))
	assert.Equal(t, Login, n.Current().Route)
	assert.ErrorIs(t, n.SelectTab("Feed"), ErrUnknownTab)
}
