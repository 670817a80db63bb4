package domain

// ProviderOrder is the payment provider's answer to an order creation.
type ProviderOrder struct {
	ProviderOrderID string
	Status          string
}

// CaptureResult is the payment provider's answer to a capture.
// Payer and capture fields are optional: providers omit them on some outcomes.
type CaptureResult struct {
	ProviderOrderID string
	Status          string
	PayerID         *string
	PayerEmail      *string
	CaptureID       *string
}
