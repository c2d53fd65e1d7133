package booking

import (
	"testing"

	"salonbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name  string
		from  string
		to    string
		actor Actor
		want  bool
	}{
		{"provider confirms pending", models.StatusPending, models.StatusConfirmed, ActorProvider, true},
		{"client cannot confirm", models.StatusPending, models.StatusConfirmed, ActorClient, false},
		{"client cancels pending", models.StatusPending, models.StatusCancelled, ActorClient, true},
		{"provider cancels pending", models.StatusPending, models.StatusCancelled, ActorProvider, true},
		{"provider completes confirmed", models.StatusConfirmed, models.StatusCompleted, ActorProvider, true},
		{"client cannot complete", models.StatusConfirmed, models.StatusCompleted, ActorClient, false},
		{"client cancels confirmed", models.StatusConfirmed, models.StatusCancelled, ActorClient, true},
		{"pending cannot complete directly", models.StatusPending, models.StatusCompleted, ActorProvider, false},
		{"cancelled is terminal", models.StatusCancelled, models.StatusPending, ActorProvider, false},
		{"completed is terminal", models.StatusCompleted, models.StatusCancelled, ActorProvider, false},
		{"no self transition", models.StatusPending, models.StatusPending, ActorProvider, false},
		{"unknown status", "draft", models.StatusConfirmed, ActorProvider, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to, tt.actor))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(models.StatusPending))
	assert.False(t, IsTerminal(models.StatusConfirmed))
	assert.True(t, IsTerminal(models.StatusCancelled))
	assert.True(t, IsTerminal(models.StatusCompleted))
}

func TestTransition_AppliesChange(t *testing.T) {
	b := &models.Booking{Status: models.StatusPending}

	err := Transition(b, models.StatusConfirmed, ActorProvider)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, b.Status)
	assert.False(t, b.UpdatedAt.IsZero())
}

func TestTransition_RejectedLeavesBookingUntouched(t *testing.T) {
	b := &models.Booking{Status: models.StatusCompleted}

	err := Transition(b, models.StatusCancelled, ActorProvider)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, models.StatusCompleted, b.Status)
	assert.True(t, b.UpdatedAt.IsZero())
}

func TestTransition_FullLifecycle(t *testing.T) {
	b := &models.Booking{Status: models.StatusPending}

	require.NoError(t, Transition(b, models.StatusConfirmed, ActorProvider))
	require.NoError(t, Transition(b, models.StatusCompleted, ActorProvider))

	// Every edge out of a terminal state is rejected.
	for _, to := range Statuses() {
		assert.ErrorIs(t, Transition(b, to, ActorProvider), ErrInvalidTransition)
		assert.ErrorIs(t, Transition(b, to, ActorClient), ErrInvalidTransition)
	}
}

func TestStatuses(t *testing.T) {
	assert.ElementsMatch(t, []string{"pending", "confirmed", "cancelled", "completed"}, Statuses())
}
