package access

type AccessState string

const (
	// AccessFull: paid and inside the billing period.
	AccessFull AccessState = "full"
	// AccessLimited: a subscription exists but payment is not settled
	// (checkout pending, past_due). Read-only use of the product.
	AccessLimited AccessState = "limited"
	// AccessLocked: canceled or never subscribed.
	AccessLocked AccessState = "locked"
)
