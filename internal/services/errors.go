// internal/services/errors.go
package services

import "errors"

// Shared service errors. Messages double as the API-facing text, so they keep
// the not found / unauthorized phrasing the handlers match on.
var (
	ErrCollaborationNotFound = errors.New("collaboration not found")
	ErrProposalNotFound      = errors.New("schedule proposal not found")
	ErrMatchNotFound         = errors.New("match not found")
	ErrWishlistNotFound      = errors.New("wishlist entry not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrPodcastNotFound       = errors.New("podcast not found")
	ErrServiceNotFound       = errors.New("service not found")
	ErrNotAuthorized         = errors.New("unauthorized to perform this action")

	// ErrConcurrentUpdate means another transition committed between our read
	// and our conditional write. The caller may retry against fresh state.
	ErrConcurrentUpdate = errors.New("collaboration was modified concurrently, retry")
)
