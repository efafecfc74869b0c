package domain

import "time"

// ShopToken is the per-shop OAuth credential. AccessToken is stored
// encrypted at rest; repositories hand back whatever they were given, the
// auth service owns encryption and decryption.
type ShopToken struct {
	Shop        string    `json:"shop"`
	AccessToken string    `json:"-"`
	InstalledAt time.Time `json:"installed_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
