package interaction

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
)

// Hover tracks the tooltip of the wrapper under the pointer.
type Hover struct {
	mu      sync.Mutex
	current *Tooltip
	index   int
	logger  logging.Logger
}

func NewHover(logger logging.Logger) *Hover {
	return &Hover{logger: logger.With("module", "hover"), index: -1}
}

// Enter shows the tooltip of w. Corrupt wrapper data is logged and leaves
// no tooltip.
func (h *Hover) Enter(ctx context.Context, index int, w Wrapper) bool {
	tip, err := ParseTooltip(w)

	h.mu.Lock()
	defer h.mu.Unlock()

	if err != nil {
		h.logger.Warn(ctx, "ignoring hover on corrupt wrapper", "text", w.Text, "error", err)
		h.current = nil
		h.index = -1
		return false
	}
	h.current = &tip
	h.index = index
	return true
}

func (h *Hover) Leave() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = nil
	h.index = -1
}

// Current returns the active tooltip and the index of its wrapper.
func (h *Hover) Current() (Tooltip, int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current == nil {
		return Tooltip{}, -1, false
	}
	return *h.current, h.index, true
}
