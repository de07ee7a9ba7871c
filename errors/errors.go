package errors

import "fmt"

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrNotFound         = fmt.Errorf("document not found")
	ErrPermissionDenied = fmt.Errorf("permission denied")
	ErrEmptyMessage     = fmt.Errorf("message has no content")
	ErrUnknownEffect    = fmt.Errorf("unknown effect name")
	ErrUnknownEvent     = fmt.Errorf("unknown event kind")
)
