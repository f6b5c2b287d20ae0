package compaction

import "errors"

var errAlreadyClosed = errors.New("compaction: control plane already closed")
