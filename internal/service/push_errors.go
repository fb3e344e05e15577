package service

import "strings"

// invalidTokenSignatures are the provider error fragments that specifically
// mean "this registration token is dead and will never work again". Transient
// errors (rate limiting, network, unavailable) deliberately do not match so
// their tokens stay active for later dispatches.
var invalidTokenSignatures = []string{
	"registration-token-not-registered",
	"requested entity was not found",
	"not a valid fcm registration token",
	"invalid-registration-token",
	"notregistered",
	"invalidregistration",
}

// IsInvalidTokenError classifies a provider error string as the
// invalid-registration-token case. The adapter surfaces provider error text
// verbatim, so matching is by substring against a fixed allow-list.
func IsInvalidTokenError(msg string) bool {
	if msg == "" {
		return false
	}
	lower := strings.ToLower(msg)
	for _, sig := range invalidTokenSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}
