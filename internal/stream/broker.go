package stream

import (
	"sync"
	"time"
)

// Collection keys clients may subscribe to.
const (
	KeyConditions = "conditions"
	KeyNotices    = "notices"
	KeyEntrants   = "entrants"
)

// Message is one update pushed to subscribers.
type Message struct {
	Key  string      `json:"key"`
	Data interface{} `json:"data"`
	At   time.Time   `json:"at"`
}

// Subscription is a live feed for one collection key. Receive on C and
// call Unsubscribe when done; forgetting to unsubscribe leaks the channel.
type Subscription struct {
	C   <-chan Message
	ch  chan Message
	key string

	once   sync.Once
	cancel func()
}

// Unsubscribe detaches the subscription. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.cancel)
}

// Broker fans out collection updates to subscribers. Each subscriber
// channel holds a single pending message: when a subscriber lags, older
// updates are dropped so the most recent write wins.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[*Subscription]struct{}),
	}
}

// Subscribe registers interest in a collection key.
func (b *Broker) Subscribe(key string) *Subscription {
	ch := make(chan Message, 1)
	sub := &Subscription{C: ch, ch: ch, key: key}
	sub.cancel = func() { b.remove(sub) }

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[key] == nil {
		b.subs[key] = make(map[*Subscription]struct{})
	}
	b.subs[key][sub] = struct{}{}

	return sub
}

// Publish delivers data to every subscriber of key. Never blocks.
func (b *Broker) Publish(key string, data interface{}) {
	msg := Message{Key: key, Data: data, At: time.Now().UTC()}

	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.subs[key] {
		select {
		case sub.ch <- msg:
		default:
			// Drop the stale pending message, then deliver the new one.
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- msg:
			default:
			}
		}
	}
}

// SubscriberCount returns the number of active subscriptions for a key.
func (b *Broker) SubscriberCount(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[key])
}

func (b *Broker) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if set, ok := b.subs[sub.key]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(b.subs, sub.key)
		}
	}
}
