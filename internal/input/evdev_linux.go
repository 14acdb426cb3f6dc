//go:build linux

package input

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// Evdev reads key presses from a Linux input device such as the node the
// gpio-keys driver creates for GPIO buttons. Each press of a code listed in
// pins (all codes if pins is empty) becomes a GPIO event whose ID is the
// code. The loop polls with a bounded timeout so ctx cancellation is seen
// within interval.
func Evdev(ctx context.Context, path string, pins []int, interval time.Duration, out chan<- Event) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("input: open %s: %w", path, err)
	}
	defer unix.Close(fd)

	watch := pinFilter(pins)
	buf := make([]byte, evdevEventSize*64)
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	timeout := int(interval / time.Millisecond)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := unix.Poll(fds, timeout)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("input: poll %s: %w", path, err)
		}
		if n == 0 {
			continue
		}
		if fds[0].Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
			return fmt.Errorf("input: %s disconnected", path)
		}

		nr, err := unix.Read(fd, buf)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("input: read %s: %w", path, err)
		}
		for off := 0; off+evdevEventSize <= nr; off += evdevEventSize {
			code, ok := parseEvdev(buf[off : off+evdevEventSize])
			if !ok || !watch(code) {
				continue
			}
			select {
			case out <- gpioEvent(code):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
