package core

import (
	"errors"
)

var (
	ErrNotReady             = errors.New("primitive is not ready to draw")
	ErrDestroyed            = errors.New("primitive has been destroyed")
	ErrIndexOutOfRange      = errors.New("index does not fit in 16 bits")
	ErrMalformedGeometry    = errors.New("vertex data length is not a multiple of the layout stride")
	ErrInvalidTextureConfig = errors.New("invalid texture configuration")
	ErrInvalidImage         = errors.New("image has no pixels or a size that does not match them")
	ErrBufferAllocation     = errors.New("driver returned buffer 0")
	ErrNoContext            = errors.New("no GL context available")
	ErrUnknownPrimitive     = errors.New("unknown primitive kind")
	ErrUnknown              = errors.New("unknown")
)
