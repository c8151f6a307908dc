package openrouter

// Fallback replies substituted for the assistant text when a completion fails.
const (
	FallbackEmpty      = "I'm sorry, I couldn't generate a response."
	FallbackTransport  = "I'm sorry, I'm having trouble connecting to the AI service."
	FallbackDecode     = "I'm sorry, I received an invalid response from the AI service."
	FallbackUnexpected = "I'm sorry, an unexpected error occurred."
)

// Failure classifies why a reply carries fallback text.
type Failure int

const (
	FailureNone Failure = iota
	// FailureEmpty is a well-formed response without any choice or content.
	FailureEmpty
	// FailureTransport covers dial errors, timeouts and non-2xx statuses.
	FailureTransport
	// FailureDecode is a response body that could not be parsed.
	FailureDecode
	// FailureUnexpected is a failure to build the request itself.
	FailureUnexpected
)

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureEmpty:
		return "empty"
	case FailureTransport:
		return "transport"
	case FailureDecode:
		return "decode"
	case FailureUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// Fallback returns the user-facing text for the failure.
func (f Failure) Fallback() string {
	switch f {
	case FailureEmpty:
		return FallbackEmpty
	case FailureTransport:
		return FallbackTransport
	case FailureDecode:
		return FallbackDecode
	case FailureUnexpected:
		return FallbackUnexpected
	default:
		return ""
	}
}

// Reply is the outcome of a completion. Text is always narratable: the model's
// content, or the fallback for Failure.
type Reply struct {
	Text    string
	Model   string
	Failure Failure
	// Err is the underlying cause when Failure is set.
	Err error
}

// OK reports whether Text came from the model.
func (r Reply) OK() bool {
	return r.Failure == FailureNone
}

func failed(model string, f Failure, err error) Reply {
	return Reply{Text: f.Fallback(), Model: model, Failure: f, Err: err}
}
