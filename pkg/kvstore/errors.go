package kvstore

import "errors"

var (
	// ErrWatchUnsupported indicates the store was built without change notifications
	ErrWatchUnsupported = errors.New("kvstore.watch_unsupported")

	// ErrCorruptFile indicates the backing file could not be decoded
	ErrCorruptFile = errors.New("kvstore.corrupt_file")

	// ErrLocked indicates the cross-process file lock could not be acquired
	ErrLocked = errors.New("kvstore.locked")

	// ErrClosed indicates the store has been closed
	ErrClosed = errors.New("kvstore.closed")
)
