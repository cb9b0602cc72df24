// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthRegisterSuccess    = "auth.register_success"

	// User Management
	KeyUserNotFound = "user.not_found"

	// Podcasts and services
	KeyPodcastCreated  = "podcast.created"
	KeyPodcastNotFound = "podcast.not_found"
	KeyServiceCreated  = "service.created"
	KeyServiceNotFound = "service.not_found"

	// Collaborations
	KeyCollaborationInitiated = "collaboration.initiated"
	KeyCollaborationNotFound  = "collaboration.not_found"
	KeyPitchSubmitted         = "collaboration.pitch_submitted"
	KeyPitchAccepted          = "collaboration.pitch_accepted"
	KeyPitchDeclined          = "collaboration.pitch_declined"
	KeyPaymentConfirmed       = "collaboration.payment_confirmed"
	KeyDeliverableAdded       = "collaboration.deliverable_added"
	KeyPayoutReleased         = "collaboration.payout_released"

	// Scheduling
	KeyScheduleProposed    = "schedule.proposed"
	KeyScheduleConfirmed   = "schedule.confirmed"
	KeyScheduleDeclined    = "schedule.declined"
	KeyProposalNotFound    = "schedule.proposal_not_found"
	KeyRescheduleRequested = "schedule.reschedule_requested"
	KeyRescheduleAccepted  = "schedule.reschedule_accepted"
	KeyRescheduleDeclined  = "schedule.reschedule_declined"

	// Wishlists and matching
	KeyWishlistCreated  = "wishlist.created"
	KeyWishlistNotFound = "wishlist.not_found"
	KeyMatchNotFound    = "match.not_found"
	KeyMatchDismissed   = "match.dismissed"
	KeyMatchSweepDone   = "match.sweep_complete"

	// Admin
	KeyAdminAccessDenied = "admin.access_denied"
)
