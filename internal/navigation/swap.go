package navigation

import (
	"fmt"

	"github.com/iota-uz/labdesk/pkg/dom"
)

// swap replaces the live content region with the one in body and restores the
// panel that was active before. It returns the panel active afterwards. Nothing
// is changed when either side lacks the region.
func (c *Controller) swap(body string) (string, error) {
	next, err := dom.ParseString(body)
	if err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	incoming := next.QuerySelector(c.contentSelector)
	if incoming == nil {
		return "", fmt.Errorf("%w: %s absent from response", ErrStructuralMismatch, c.contentSelector)
	}
	live := c.window.Document().QuerySelector(c.contentSelector)
	if live == nil {
		return "", fmt.Errorf("%w: %s absent from page", ErrStructuralMismatch, c.contentSelector)
	}

	state := c.page.Tabs.Snapshot()
	live.SetInnerHTML(incoming.InnerHTML())

	if !c.page.Tabs.Present() {
		return "", nil
	}
	active, err := c.page.Tabs.Restore(state)
	if err != nil {
		c.log.WithError(err).WithField("panel", state.Active).Warn("failed to restore panel")
	}
	return active, nil
}
