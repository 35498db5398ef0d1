package engine

import "errors"

// ErrNoLibrary is returned by library operations when no problem library is
// configured.
var ErrNoLibrary = errors.New("no problem library configured")
