package library

import "errors"

var (
	ErrKeyNotFound     = errors.New("key not found")
	ErrInvalidKey      = errors.New("invalid key")
	ErrLoadFailed      = errors.New("load failed")
	ErrSaveFailed      = errors.New("save failed")
	ErrInvalidProblem  = errors.New("invalid problem")
	ErrProblemNotFound = errors.New("problem not found")
)
