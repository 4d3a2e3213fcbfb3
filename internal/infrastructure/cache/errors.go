package cache

import "errors"

// ErrLockNotHeld is returned by a release when the lock expired or was taken
// over by another holder
var ErrLockNotHeld = errors.New("cache: lock not held")
