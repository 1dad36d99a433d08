package eventbus

import (
	"reflect"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/lockp111/go-cmap"
)

// Bus struct
//
// A Bus dispatches synchronously in the caller's goroutine. Listeners may call
// back into the bus while a dispatch is running.
type Bus[T any] struct {
	topics        cmap.ConcurrentMap[string, *Topic[T]]
	all           *Topic[T]
	seq           atomic.Uint64
	subscriptions []subscription[T]
}

// New - return a new Bus
func New[T any]() *Bus[T] {
	return &Bus[T]{
		topics: cmap.New[*Topic[T]](),
		all:    newTopic[T](ALL),
	}
}

// On - register the event under every whitespace separated topic
func (b *Bus[T]) On(topics string, e Event[T]) (Registrations, error) {
	return b.addEvents(topics, false, e)
}

// Once - register an event that removes itself before its first call
func (b *Bus[T]) Once(topics string, e Event[T]) (Registrations, error) {
	return b.addEvents(topics, true, e)
}

// OnAll - register an event that observes every topic triggered on the bus
func (b *Bus[T]) OnAll(e Event[T]) (Registration, error) {
	if isNilEvent(e) {
		return Registration{}, ErrNilEvent
	}
	return b.addEvent(ALL, false, e), nil
}

// Off - remove registrations by id, all of the topic's if no id is given
func (b *Bus[T]) Off(topics string, ids ...uint64) *Bus[T] {
	for _, name := range strings.Fields(topics) {
		t := b.Get(name)
		if t == nil {
			continue
		}
		if len(ids) == 0 {
			t.Clear()
		} else {
			t.removeIDs(ids)
		}
		b.prune(name, t)
	}
	return b
}

// OffEvent - remove registrations by listener, all of the topic's if no listener is given
func (b *Bus[T]) OffEvent(topics string, es ...Event[T]) *Bus[T] {
	tags := make([]reflect.Value, 0, len(es))
	for _, e := range es {
		tags = append(tags, reflect.ValueOf(e))
	}

	for _, name := range strings.Fields(topics) {
		t := b.Get(name)
		if t == nil {
			continue
		}
		if len(tags) == 0 {
			t.Clear()
		} else {
			t.removeTags(tags)
		}
		b.prune(name, t)
	}
	return b
}

// OffAll - remove observers registered with OnAll
func (b *Bus[T]) OffAll(es ...Event[T]) *Bus[T] {
	return b.OffEvent(ALL, es...)
}

// Clean - clear all events
func (b *Bus[T]) Clean() *Bus[T] {
	b.topics.IterCb(func(_ string, t *Topic[T]) {
		t.Clear()
	})
	b.all.Clear()
	b.topics = cmap.New[*Topic[T]]()
	return b
}

// Trigger - dispatch data to the observers, then to the topic's listeners
//
// The first error returned by a listener stops the dispatch and is returned.
func (b *Bus[T]) Trigger(topic string, data ...T) error {
	if err := b.all.dispatch(topic, data); err != nil {
		return err
	}
	if topic == ALL {
		return nil
	}

	t, ok := b.topics.Get(topic)
	if !ok {
		return nil
	}
	err := t.dispatch(topic, data)
	b.prune(topic, t)
	return err
}

// Broadcast - dispatch data to every topic, in topic name order
func (b *Bus[T]) Broadcast(data ...T) error {
	topics := make([]*Topic[T], 0, b.topics.Count())
	b.topics.IterCb(func(_ string, t *Topic[T]) {
		topics = append(topics, t)
	})
	slices.SortFunc(topics, func(x, y *Topic[T]) int {
		return strings.Compare(x.name, y.name)
	})

	for _, t := range topics {
		if err := t.Dispatch(data); err != nil {
			return err
		}
	}
	return nil
}

// TopicCount - return the number of topics with listeners
func (b *Bus[T]) TopicCount() int {
	total := 0
	b.topics.IterCb(func(_ string, t *Topic[T]) {
		if t.Count() > 0 {
			total++
		}
	})
	return total
}

// EventCount - return the number of events for a topic
func (b *Bus[T]) EventCount(topic string) int {
	t := b.Get(topic)
	if t == nil {
		return 0
	}
	return t.Count()
}

// TotalEvents - return the total number of events, observers included
func (b *Bus[T]) TotalEvents() int {
	total := b.all.Count()
	b.topics.IterCb(func(_ string, t *Topic[T]) {
		total += t.Count()
	})
	return total
}

// Get - get topic handler
func (b *Bus[T]) Get(topic string) *Topic[T] {
	if topic == ALL {
		return b.all
	}
	t, ok := b.topics.Get(topic)
	if !ok {
		return nil
	}
	return t
}

func (b *Bus[T]) addEvents(topics string, isUnique bool, e Event[T]) (Registrations, error) {
	names := strings.Fields(topics)
	if len(names) == 0 {
		return nil, ErrNoTopic
	}
	if isNilEvent(e) {
		return nil, ErrNilEvent
	}

	regs := make(Registrations, 0, len(names))
	for _, name := range names {
		regs = append(regs, b.addEvent(name, isUnique, e))
	}
	return regs, nil
}

func (b *Bus[T]) addEvent(topic string, isUnique bool, e Event[T]) Registration {
	id := b.seq.Add(1)
	if topic == ALL {
		b.all.addEvent(e, id, isUnique)
		return Registration{Topic: topic, ID: id}
	}

	t, ok := b.topics.Get(topic)
	if !ok {
		t = newTopic[T](topic)
		b.topics.Set(topic, t)
	}
	t.addEvent(e, id, isUnique)
	return Registration{Topic: topic, ID: id}
}

// prune drops an empty topic, unless it was already replaced.
func (b *Bus[T]) prune(topic string, t *Topic[T]) {
	if topic == ALL || t.Count() > 0 {
		return
	}
	if cur, ok := b.topics.Get(topic); ok && cur == t {
		b.topics.Remove(topic)
	}
}
