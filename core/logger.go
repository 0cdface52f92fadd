package core

// Logger is the application-wide logging contract.
// args may carry an error, a map of extra context, or a Claims-like value
// depending on the implementation.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
