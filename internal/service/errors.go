package service

import "errors"

// ErrNoFaceDetected is returned when the encoding service finds no face in
// the submitted image. Distinct from input validation: the payload was a
// perfectly good image, it just had nobody in it.
var ErrNoFaceDetected = errors.New("no face detected in the image")

// ValidationError marks a request rejected before any store access.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationErrorf(msg string) error {
	return &ValidationError{Msg: msg}
}

// IsValidation reports whether err is an input validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
