package hal

// gestureQueue is a bounded event queue. When full, new events are dropped.
type gestureQueue struct {
	ch chan GestureEvent
}

func newGestureQueue(n int) *gestureQueue {
	return &gestureQueue{ch: make(chan GestureEvent, n)}
}

func (q *gestureQueue) Gestures() <-chan GestureEvent { return q.ch }

func (q *gestureQueue) push(ev GestureEvent) bool {
	select {
	case q.ch <- ev:
		return true
	default:
		return false
	}
}
