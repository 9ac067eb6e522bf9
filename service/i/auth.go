package i

// Authenticator issues bearer tokens to training harnesses.
type Authenticator interface {
	IssueToken(name, key string) (string, error)
}
