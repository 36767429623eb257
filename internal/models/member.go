package models

// Member is the locally stored profile for a member identity.
//
// The identity itself (the ID) comes from the external identity provider
// via the bearer token; this record only carries what the backend needs,
// most importantly the device token push reminders are delivered to.
type Member struct {
	// ID is the stable member identifier issued by the identity provider.
	ID string `json:"id"`

	// Name is the display name of the member.
	Name string `json:"name"`

	// DeviceToken is the push delivery token for the member's device.
	// Empty when the member has never registered a device.
	DeviceToken string `json:"device_token,omitempty"`

	// UpdatedAt is the Unix timestamp of the last profile update.
	UpdatedAt int64 `json:"updated_at"`
}
