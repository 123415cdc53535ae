// Package host abstracts the chat-platform capabilities the session
// layer consumes: readiness, alerts and the payment invoice UI.
package host

import "errors"

// ErrNotAvailable is returned when the host platform bridge is missing
// (the app was opened outside its host).
var ErrNotAvailable = errors.New("host platform not available")

// Platform is the session layer's view of the host. OpenInvoice
// registers the status callback for exactly one terminal report and
// releases it afterwards, regardless of which status arrived.
type Platform interface {
	// Ready must succeed before any session begins.
	Ready() error
	// SupportsInvoices reports whether the payment UI can be opened.
	SupportsInvoices() bool
	// OpenInvoice hands the link to the payment UI. cb is invoked with
	// exactly one terminal status string.
	OpenInvoice(link string, cb func(status string)) error
	// ShowAlert displays a user-facing message.
	ShowAlert(msg string)
}

// Terminal statuses the Telegram payment UI reports. Anything else is
// surfaced literally.
const (
	StatusPaid      = "paid"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
)
