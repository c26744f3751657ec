package validator

type Options struct {
	skipComplianceChecks bool
	skipSignatureChecks  bool
}

// Option is a function that sets some option on the Options struct
type Option func(*Options)

func NewDefaultOptions() *Options {
	return &Options{
		skipComplianceChecks: false,
		skipSignatureChecks:  false,
	}
}

func ProcessOptions(opts ...Option) *Options {
	options := NewDefaultOptions()
	for _, o := range opts {
		o(options)
	}

	return options
}

// WithSkipComplianceChecks skips the compliance stage. Used by governance
// redemptions, which burn from accounts that may be frozen or blacklisted.
func WithSkipComplianceChecks(skip bool) Option {
	return func(o *Options) {
		o.skipComplianceChecks = skip
	}
}

// WithSkipSignatureChecks skips signature verification.
func WithSkipSignatureChecks(skip bool) Option {
	return func(o *Options) {
		o.skipSignatureChecks = skip
	}
}
