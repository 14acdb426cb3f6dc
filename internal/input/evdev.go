package input

import (
	"encoding/binary"
	"strconv"
	"time"
)

// DefaultPollInterval bounds how long the evdev reader waits before
// rechecking for cancellation.
const DefaultPollInterval = 100 * time.Millisecond

// Linux input_event layout on 64-bit: struct timeval (16 bytes), then
// type, code and value.
const (
	evdevEventSize = 24
	evKey          = 0x01
	keyPressed     = 1
)

// parseEvdev decodes one input_event and returns the key code of a key
// press, or false for anything else (releases, repeats, sync reports).
func parseEvdev(b []byte) (code uint16, ok bool) {
	if len(b) < evdevEventSize {
		return 0, false
	}
	typ := binary.LittleEndian.Uint16(b[16:18])
	code = binary.LittleEndian.Uint16(b[18:20])
	value := int32(binary.LittleEndian.Uint32(b[20:24]))
	if typ != evKey || value != keyPressed {
		return 0, false
	}
	return code, true
}

// pinFilter returns a predicate for the watched key codes. An empty list
// watches everything.
func pinFilter(pins []int) func(code uint16) bool {
	if len(pins) == 0 {
		return func(uint16) bool { return true }
	}
	set := make(map[uint16]bool, len(pins))
	for _, p := range pins {
		set[uint16(p)] = true
	}
	return func(code uint16) bool { return set[code] }
}

func gpioEvent(code uint16) Event {
	return Event{Source: SourceGPIO, ID: strconv.Itoa(int(code)), Time: time.Now()}
}
