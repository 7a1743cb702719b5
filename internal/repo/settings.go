package repo

import "context"

// Persisted keys.
const (
	KeyWebhookURL  = "webhookUrl"
	KeyHTTPMethod  = "httpMethod"
	KeyResponseURL = "responseUrl"
	KeyTheme       = "theme"
)

// SettingsStore holds opaque string values by key. A missing key is not an
// error: Get reports ok=false.
type SettingsStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}
