package apiclient

import "errors"

var (
	// ErrStatusNotOK is returned when http response had status outside of 2xx range.
	ErrStatusNotOK = errors.New("response status is not 2xx")
	// ErrContentTypeNotSupported is returned when response content type is not supported.
	ErrContentTypeNotSupported = errors.New("response content type not supported")
	// ErrInvalidDataURI is returned when QR code isn't a base64 data URI.
	ErrInvalidDataURI = errors.New("invalid data URI")
)
