// Package keypad provides the 16-key CHIP-8 keypad. The keypad is
// written by the input layer and read by the emulator, which may run
// on a different goroutine, so access is guarded by a mutex.
package keypad

import "sync"

// KeyCount is the number of keys on the keypad.
const KeyCount = 16

// Keypad represents the state of the 16 hexadecimal keys 0x0..0xF.
type Keypad struct {
	mu   sync.RWMutex
	keys [KeyCount]bool
}

// New returns a new keypad with every key released.
func New() *Keypad {
	return &Keypad{}
}

// Set sets the state of the given key. Keys outside 0x0..0xF are
// ignored.
func (k *Keypad) Set(key uint8, down bool) {
	if key >= KeyCount {
		return
	}
	k.mu.Lock()
	k.keys[key] = down
	k.mu.Unlock()
}

// Reset releases every key.
func (k *Keypad) Reset() {
	k.mu.Lock()
	k.keys = [KeyCount]bool{}
	k.mu.Unlock()
}

// IsPressed returns true if the given key is currently held. Keys
// outside 0x0..0xF are never pressed.
func (k *Keypad) IsPressed(key uint8) bool {
	if key >= KeyCount {
		return false
	}
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.keys[key]
}

// PressedKey returns the lowest-indexed key that is currently held.
// The ordering is observable through the wait-for-key instruction,
// which reports the lowest key when several are held at once.
func (k *Keypad) PressedKey() (uint8, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	for i, down := range k.keys {
		if down {
			return uint8(i), true
		}
	}
	return 0, false
}
