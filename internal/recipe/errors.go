package recipe

import "errors"

// ErrConfig indicates a malformed recipe or variant document. It is always
// wrapped with position or field detail.
var ErrConfig = errors.New("config error")
