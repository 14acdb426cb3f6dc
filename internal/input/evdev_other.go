//go:build !linux

package input

import (
	"context"
	"errors"
	"time"
)

// Evdev is only available on Linux.
func Evdev(ctx context.Context, path string, pins []int, interval time.Duration, out chan<- Event) error {
	return errors.New("input: evdev devices require linux")
}
