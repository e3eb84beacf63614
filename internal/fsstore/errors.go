package fsstore

import "errors"

var (
	ErrInvalidPath       = errors.New("fsstore: invalid path")
	ErrAtomicWriteFailed = errors.New("fsstore: atomic write failed")
	ErrTooLarge          = errors.New("fsstore: content too large")
	ErrInsecureDir       = errors.New("fsstore: insecure directory")
)
