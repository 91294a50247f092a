package middleware

import tele "gopkg.in/telebot.v4"

const countersKey = "out_counters"

// outCounters tallies the messages an update produced. Handlers hand
// messages to the sender queue, so nothing passes through tele.Context.Send.
type outCounters struct {
	messages int
	keyboard bool
}

func countersOf(c tele.Context) *outCounters {
	if oc, ok := c.Get(countersKey).(*outCounters); ok {
		return oc
	}
	oc := &outCounters{}
	c.Set(countersKey, oc)
	return oc
}

// MessageMetricsMiddleware resets the per-update counters read by the handler summary log.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		c.Set(countersKey, &outCounters{})
		return next(c)
	}
}

// CountQueued records one message queued for delivery while handling c.
func CountQueued(c tele.Context, hasKB bool) {
	oc := countersOf(c)
	oc.messages++
	oc.keyboard = oc.keyboard || hasKB
}

// GetCounters returns how many messages were queued and whether any carried a keyboard.
func GetCounters(c tele.Context) (int, bool) {
	oc, ok := c.Get(countersKey).(*outCounters)
	if !ok {
		return 0, false
	}
	return oc.messages, oc.keyboard
}
