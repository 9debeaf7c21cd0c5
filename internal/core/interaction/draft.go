package interaction

import (
	"strings"
	"sync"
)

// Draft holds the answer being typed. The core clears it only after the
// answer was accepted by the service.
type Draft struct {
	mu   sync.RWMutex
	text string
}

func NewDraft(text string) *Draft {
	return &Draft{text: text}
}

func (d *Draft) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text
}

func (d *Draft) Set(text string) {
	d.mu.Lock()
	d.text = text
	d.mu.Unlock()
}

func (d *Draft) Clear() {
	d.Set("")
}

// ClearIf empties the draft only while it still holds text, so edits made
// after text was submitted survive. It reports whether it cleared.
func (d *Draft) ClearIf(text string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.text != text {
		return false
	}
	d.text = ""
	return true
}

// Blank reports whether the draft is empty after trimming whitespace.
func (d *Draft) Blank() bool {
	return strings.TrimSpace(d.Text()) == ""
}
