package model

// CallOptions holds the per-call flags of a mutating operation.
type CallOptions struct {
	// Silent suppresses the events the call would otherwise emit.
	Silent bool
}

// CallOption configures a single call.
type CallOption func(*CallOptions)

// Silent suppresses event emission for one call.
func Silent() CallOption {
	return func(o *CallOptions) {
		o.Silent = true
	}
}

// NewCallOptions applies opts in order.
func NewCallOptions(opts ...CallOption) CallOptions {
	var o CallOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
