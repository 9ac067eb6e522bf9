package i

// Logger is the component logger used by services.
type Logger interface {
	Info(string)
	Warning(string)
	Error(string)
}
