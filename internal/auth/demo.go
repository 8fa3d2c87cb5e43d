package auth

import (
	sharedauth "dealscope-backend/internal/shared/auth"
	"dealscope-backend/internal/users"
)

// DemoProfile is the fixed substitute identity used when the hosted auth
// backend is unavailable or deliberately bypassed.
func DemoProfile() users.UserProfile {
	return users.UserProfile{
		UID:         "demo-user",
		DisplayName: "Demo Shopper",
		Initials:    "DS",
	}
}

// IssueDemoToken signs a session token for the demo identity.
func IssueDemoToken() (string, error) {
	profile := DemoProfile()
	return sharedauth.SignJWT(sharedauth.Claims{
		Sub:  profile.UID,
		Name: profile.DisplayName,
		Demo: true,
	})
}
