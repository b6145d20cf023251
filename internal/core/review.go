package core

// ReviewerRole is the fixed role tag attached to the persona message.
const ReviewerRole = "code reviewer"

// ReviewRequest is the inbound payload of a review call.
type ReviewRequest struct {
	SourceText string
}

// ProviderMessage is one message of the outbound set sent to a provider.
type ProviderMessage struct {
	Role    string
	Content string
}

// ReviewResult is the outcome of a single review call. Exactly one of Text
// and Err is meaningful.
type ReviewResult struct {
	Text string
	Err  error
}

// OK reports whether the review succeeded.
func (r ReviewResult) OK() bool {
	return r.Err == nil
}

// ReviewPromptData is a type-safe struct for rendering the review persona prompt.
type ReviewPromptData struct {
	Code string
}
