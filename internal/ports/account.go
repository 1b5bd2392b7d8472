package ports

import "context"

// AccountPort updates player profile data on the hosting platform.
type AccountPort interface {
	// UpdateProfile sets the username and display name on the account
	// identified by userID.
	UpdateProfile(ctx context.Context, userID, username, displayName string) error
}
