package shell

import "errors"

// ErrAborted signals the operator ended the session (Ctrl+C or end of input).
var ErrAborted = errors.New("shell: aborted")
