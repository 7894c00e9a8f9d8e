package authcode

// Repo stores authorization-code records keyed by code value. Implementations
// must provide atomic consume-once redemption.
type Repo interface {
	// Store persists the record until its expiry.
	Store(record Record) error

	// Redeem retrieves and deletes the record in one atomic step. A second
	// Redeem of the same code fails.
	Redeem(code string) (*Record, error)
}
