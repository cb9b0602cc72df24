// internal/models/status.go
package models

import "fmt"

// CollaborationAction is an event that may move a collaboration between states.
type CollaborationAction string

const (
	ActionAcceptPitch       CollaborationAction = "accept_pitch"
	ActionAcceptFreePitch   CollaborationAction = "accept_free_pitch"
	ActionDeclinePitch      CollaborationAction = "decline_pitch"
	ActionAgreeTerms        CollaborationAction = "agree_terms"
	ActionAgreeFreeTerms    CollaborationAction = "agree_free_terms"
	ActionCapturePayment    CollaborationAction = "capture_payment"
	ActionConfirmSchedule   CollaborationAction = "confirm_schedule"
	ActionAcceptReschedule  CollaborationAction = "accept_reschedule"
	ActionStartSession      CollaborationAction = "start_session"
	ActionReleasePayout     CollaborationAction = "release_payout"
)

type transitionKey struct {
	From   CollaborationStatus
	Action CollaborationAction
}

// transitions is the single source of truth for the collaboration state
// machine. Anything not listed here is rejected.
var transitions = map[transitionKey]CollaborationStatus{
	{CollaborationStatusPendingReview, ActionAcceptPitch}:       CollaborationStatusPendingPayment,
	{CollaborationStatusPendingReview, ActionAcceptFreePitch}:   CollaborationStatusScheduling,
	{CollaborationStatusPendingReview, ActionDeclinePitch}:      CollaborationStatusDeclined,
	{CollaborationStatusPendingAgreement, ActionAgreeTerms}:     CollaborationStatusPendingPayment,
	{CollaborationStatusPendingAgreement, ActionAgreeFreeTerms}: CollaborationStatusScheduling,
	{CollaborationStatusPendingPayment, ActionCapturePayment}:   CollaborationStatusScheduling,
	{CollaborationStatusScheduling, ActionConfirmSchedule}:      CollaborationStatusScheduled,
	{CollaborationStatusScheduled, ActionAcceptReschedule}:      CollaborationStatusScheduled,
	{CollaborationStatusScheduled, ActionStartSession}:          CollaborationStatusInProgress,
	{CollaborationStatusInProgress, ActionReleasePayout}:        CollaborationStatusCompleted,
}

// NextStatus resolves the target state for an action, or an error when the
// action is not valid from the current state.
func NextStatus(from CollaborationStatus, action CollaborationAction) (CollaborationStatus, error) {
	to, ok := transitions[transitionKey{from, action}]
	if !ok {
		return "", fmt.Errorf("cannot %s a collaboration in status %s", action, from)
	}
	return to, nil
}

// OpenStatuses are the states in which a collaboration still occupies the
// relationship between its two parties. A new collaboration for the same pair
// is rejected while one of these exists.
func OpenStatuses() []CollaborationStatus {
	return []CollaborationStatus{
		CollaborationStatusPendingAgreement,
		CollaborationStatusPendingPayment,
		CollaborationStatusScheduling,
		CollaborationStatusScheduled,
		CollaborationStatusInProgress,
	}
}

// IsTerminal reports whether no further transition can leave the state.
func (s CollaborationStatus) IsTerminal() bool {
	return s == CollaborationStatusCompleted || s == CollaborationStatusDeclined
}
