package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	// ErrValidation rejects local input before any network call.
	ErrValidation = fmt.Errorf("validation failed")
	// ErrPermission is raised when the device denies access to a local binary.
	ErrPermission  = fmt.Errorf("permission denied")
	ErrRemoteWrite = fmt.Errorf("remote append failed")
	ErrUpload      = fmt.Errorf("binary upload failed")
	// ErrCache never reaches callers, it is only logged.
	ErrCache = fmt.Errorf("local cache failure")

	ErrNoIdentity        = fmt.Errorf("no identity available")
	ErrInvalidBody       = fmt.Errorf("message body must carry exactly one of text or attachment")
	ErrTornDown          = fmt.Errorf("controller torn down")
	ErrAlreadySubscribed = fmt.Errorf("controller already subscribed")
	ErrSubscribe         = fmt.Errorf("remote subscription failed")
	ErrStreamClosed      = fmt.Errorf("remote stream closed")
	ErrAccountNotFound   = fmt.Errorf("no stored account")
)
