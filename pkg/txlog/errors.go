// ABOUTME: Sentinel errors for the txlog package

package txlog

import "errors"

var ErrClosed = errors.New("txlog: closed")
