// Package httpapi frames the core's operations as HTTP, exactly as far as
// spec.md §4.5 scopes it: body decoding/encoding, status-code mapping, and
// routing only. No business validation lives here.
package httpapi

// reservationRequestBody is the wire shape spec.md §6 fixes for
// /api/v1/reserve and /api/v1/purchase.
type reservationRequestBody struct {
	Qty int `json:"qty"`
}

// reservationResponseBody is the success wire shape shared by /reserve and
// /purchase.
type reservationResponseBody struct {
	Success   bool   `json:"success"`
	Remaining int    `json:"remaining"`
	Message   string `json:"message"`
}

// availableResponseBody is the wire shape for /api/v1/available.
type availableResponseBody struct {
	Qty int `json:"qty"`
}

// errorResponseBody is the error wire shape spec.md §6 fixes.
type errorResponseBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// healthResponseBody is the wire shape for /api/v1/health.
type healthResponseBody struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// readyResponseBody is the wire shape for /ready.
type readyResponseBody struct {
	Status string `json:"status"`
}
