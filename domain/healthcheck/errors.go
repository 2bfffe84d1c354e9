package healthcheck

import "errors"

var ErrDisabled = errors.New("component disabled")
