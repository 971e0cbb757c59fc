package core

// Logger is any service that can log messages & errors.
// args may carry errors, maps of extra data or a *Person to attach to the report.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Person identifies the admin operating the page, attached to error reports.
type Person struct {
	ID       string
	Username string
	Email    string
}
