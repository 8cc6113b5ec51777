// internal/app/system/limits/limits.go
package limits

// Request body size limits.
const (
	// MaxJSONBodySize caps every JSON request body.
	MaxJSONBodySize = 1 << 20 // 1 MB
)
