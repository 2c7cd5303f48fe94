package helpers

import "net/url"

const avatarBaseURL = "https://api.dicebear.com/7.x/avataaars/svg"

// DefaultAvatarURL returns the generated avatar for a username. Same input, same URL.
func DefaultAvatarURL(username string) string {
	return avatarBaseURL + "?seed=" + url.QueryEscape(username)
}
