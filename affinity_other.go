//go:build !linux

package workerpool

import "errors"

var errPinUnsupported = errors.New("workerpool: cpu pinning is only supported on linux")

// PinToCPU is unsupported outside linux.
func PinToCPU(int) error { return errPinUnsupported }

func pinWorker(int) error { return errPinUnsupported }
