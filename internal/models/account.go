package models

import "strings"

// Platform identifies the social network a video or account belongs to.
type Platform string

const (
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
)

// KnownPlatforms lists the platforms with dedicated subtotals, in display order.
var KnownPlatforms = []Platform{PlatformTikTok, PlatformYouTube, PlatformInstagram}

// NormalizePlatform lowercases and trims a raw platform value.
func NormalizePlatform(raw string) Platform {
	return Platform(strings.ToLower(strings.TrimSpace(raw)))
}

// Account is a platform identity that posts videos.
type Account struct {
	UserID      string   `db:"user_id" json:"user_id"`
	Platform    Platform `db:"platform" json:"platform"`
	Username    *string  `db:"username" json:"username,omitempty"`
	DisplayName *string  `db:"discord_username" json:"display_name,omitempty"`
}

// AccountFilter scopes account registry reads.
type AccountFilter struct {
	Platform         *Platform
	ExcludeSynthetic bool
	SyntheticPrefix  string
}

// IsSynthetic reports whether the account id carries the reserved synthetic prefix.
func IsSynthetic(userID, prefix string) bool {
	return prefix != "" && strings.HasPrefix(userID, prefix)
}
