//go:build !tinygo && !cgo

package hal

import "errors"

// RunWindow is unavailable without cgo; use -headless instead.
func RunWindow(_ func(HAL) func() error) error {
	return errors.New("window mode needs cgo; rebuild with CGO_ENABLED=1 or run -headless")
}
