package domain

// PromptMessage is one message of an assembled provider prompt. Name is set
// for user turns so multi-user conversations stay attributable.
type PromptMessage struct {
	Role    Role
	Name    string
	Content string
}
