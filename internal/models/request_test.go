package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionForwardOnly(t *testing.T) {
	cases := []struct {
		name string
		from RequestStatus
		to   RequestStatus
		want bool
	}{
		{"submitted to under review", StatusSubmitted, StatusUnderReview, true},
		{"submitted to approved", StatusSubmitted, StatusApproved, true},
		{"submitted to completed", StatusSubmitted, StatusCompleted, true},
		{"under review to approved", StatusUnderReview, StatusApproved, true},
		{"approved to completed", StatusApproved, StatusCompleted, true},
		{"under review back to submitted", StatusUnderReview, StatusSubmitted, false},
		{"approved back to under review", StatusApproved, StatusUnderReview, false},
		{"completed back to approved", StatusCompleted, StatusApproved, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanTransition(tc.from, tc.to))
		})
	}
}

func TestCanTransitionSameStatusIsLegal(t *testing.T) {
	for _, status := range []RequestStatus{StatusSubmitted, StatusUnderReview, StatusApproved, StatusRejected, StatusCompleted} {
		assert.True(t, CanTransition(status, status), "same-status write must be a no-op, not an error: %s", status)
	}
}

func TestCanTransitionRejection(t *testing.T) {
	assert.True(t, CanTransition(StatusSubmitted, StatusRejected))
	assert.True(t, CanTransition(StatusUnderReview, StatusRejected))
	assert.True(t, CanTransition(StatusApproved, StatusRejected))
	assert.False(t, CanTransition(StatusCompleted, StatusRejected), "completed requests cannot be rejected")
}

func TestCanTransitionRejectedIsAbsorbing(t *testing.T) {
	for _, to := range []RequestStatus{StatusSubmitted, StatusUnderReview, StatusApproved, StatusCompleted} {
		assert.False(t, CanTransition(StatusRejected, to), "rejected must not move to %s", to)
	}
}

func TestCanTransitionUnknownStatus(t *testing.T) {
	assert.False(t, CanTransition("PENDING", StatusApproved))
	assert.False(t, CanTransition(StatusSubmitted, "DONE"))
}

func TestTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.False(t, StatusSubmitted.Terminal())
	assert.False(t, StatusUnderReview.Terminal())
	assert.False(t, StatusApproved.Terminal())
}
