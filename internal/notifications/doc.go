// Package notifications sends push notifications for task events through
// ntfy. Without a configured topic every call is a no-op.
package notifications
