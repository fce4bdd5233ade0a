package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyC = 67 // C key (ASCII), toggles frustum culling off
	KeyF = 70 // F key (ASCII), freezes the cull frustum
	KeyR = 82 // R key (ASCII), forces a collection refresh
)
