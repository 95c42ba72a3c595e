package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidBookingTransition(t *testing.T) {
	statuses := []string{BookingPending, BookingConfirmed, BookingDeclined, BookingCancelled}
	allowed := map[[2]string]bool{
		{BookingPending, BookingConfirmed}:   true,
		{BookingPending, BookingDeclined}:    true,
		{BookingPending, BookingCancelled}:   true,
		{BookingConfirmed, BookingCancelled}: true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			want := allowed[[2]string{from, to}]
			assert.Equal(t, want, ValidBookingTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestRequestedBookingStatus(t *testing.T) {
	assert.True(t, RequestedBookingStatus(BookingConfirmed))
	assert.True(t, RequestedBookingStatus(BookingDeclined))
	assert.True(t, RequestedBookingStatus(BookingCancelled))
	assert.False(t, RequestedBookingStatus(BookingPending))
	assert.False(t, RequestedBookingStatus("done"))
}
