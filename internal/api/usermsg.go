package api

import "github.com/rias-glitch/rps-arena-go/internal/msgcat"

// UserMessage maps a gateway error to its user-facing message. Server
// business errors surface verbatim; everything else goes through the
// catalog so the timeout, unreachable and auth cases stay distinct.
func UserMessage(cat *msgcat.Catalog, err error) string {
	if reason, ok := BusinessReason(err); ok {
		return reason
	}
	key := "error.generic"
	switch {
	case IsTimeout(err):
		key = "error.timeout"
	case IsUnreachable(err):
		key = "error.network_unreachable"
	case IsAuthDenied(err):
		key = "error.auth_denied"
	case IsBadPayload(err):
		key = "error.bad_payload"
	}
	return cat.RenderOr(key, nil, "Something went wrong. Try again.")
}
