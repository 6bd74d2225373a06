package api

import "errors"

var ErrInvalidRequest = errors.New("invalid_request")

// paramError is a rejected query parameter.
type paramError struct {
	param string
	msg   string
}

func (e paramError) Error() string {
	return e.param + " " + e.msg
}

func (e paramError) Unwrap() error {
	return ErrInvalidRequest
}

func newParamError(param, msg string) error {
	return paramError{param: param, msg: msg}
}

// errorParam returns the offending parameter of an invalid request error.
func errorParam(err error) string {
	var pe paramError
	if errors.As(err, &pe) {
		return pe.param
	}
	return ""
}
