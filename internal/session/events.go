package session

// Events are the only way anything reaches the dispatcher loop. Channel
// callbacks, timer ticks and UI intents all serialize onto one queue, so
// partition mutation needs no locking discipline beyond the loop itself.
type event interface {
	isEvent()
}

type openEvent struct{}

type closeEvent struct {
	err error
}

type frameEvent struct {
	data []byte
}

type tickEvent struct {
	questionIndex int
}

type intentEvent struct {
	intent Intent
}

func (openEvent) isEvent()   {}
func (closeEvent) isEvent()  {}
func (frameEvent) isEvent()  {}
func (tickEvent) isEvent()   {}
func (intentEvent) isEvent() {}
