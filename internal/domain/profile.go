package domain

import "time"

// Profile is the per-owner profile document kept alongside the remote list
// collection. Shares the store's merge-update contract.
type Profile struct {
	RecoveryEmail string    `json:"recovery_email,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}
