package errx

// Validation is a 400 for malformed input that has no registered code.
func Validation(message string) *Error {
	return New(message, TypeValidation)
}

// Unavailable is a 503 for a dependency that could not be reached.
func Unavailable(message string) *Error {
	return New(message, TypeUnavailable)
}
