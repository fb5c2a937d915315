package navigation

import "context"

// Bootstrap shows the status carried in the page's own URL and removes it from
// the location so a refresh does not repeat the message. It returns the
// signals shown.
func (c *Controller) Bootstrap(_ context.Context) []Signal {
	loc := c.window.Location()
	signals := ExtractSignals(loc)
	for _, s := range signals {
		if c.toasts != nil {
			c.toasts.Enqueue(s.Message, s.Kind)
		}
	}
	if hasSignalParams(loc) {
		c.window.ReplaceState(StripSignals(loc))
	}
	if len(signals) > 0 {
		c.log.WithField("signals", len(signals)).Debug("status signals bootstrapped")
	}
	return signals
}
