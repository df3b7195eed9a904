package events

import "sync"

// subscriberBuffer bounds how far an SSE consumer may lag before outcome
// events are dropped for it.
const subscriberBuffer = 10

// Hub fans pipeline outcome events out to the SSE subscribers. Submissions
// publish, /events consumers subscribe; a slow consumer loses events rather
// than blocking the pipeline.
type Hub struct {
	mu   sync.Mutex
	subs map[chan string]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan string]struct{})}
}

func (h *Hub) Subscribe() chan string {
	ch := make(chan string, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan string) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
	close(ch)
}

// PublishOutcome broadcasts one submission outcome (processed, duplicate,
// scrape_failed) to every subscriber.
func (h *Hub) PublishOutcome(reqID, status, url string) {
	h.Publish(MakeOutcome(reqID, status, url))
}

func (h *Hub) Publish(evt string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- evt:
		default:
			// drop for the lagging subscriber
		}
	}
}
