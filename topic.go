package eventbus

import (
	"reflect"
	"slices"
)

// Topic - the ordered listeners of one event name
type Topic[T any] struct {
	name   string
	events []*event[T]
}

func newTopic[T any](name string) *Topic[T] {
	return &Topic[T]{
		name:   name,
		events: make([]*event[T], 0),
	}
}

// Name - return the topic name
func (t *Topic[T]) Name() string {
	return t.name
}

// Dispatch - call every listener with the data, stops at the first error
func (t *Topic[T]) Dispatch(data []T) error {
	return t.dispatch(t.name, data)
}

// Count - return the number of listeners
func (t *Topic[T]) Count() int {
	return len(t.events)
}

// Clear - remove all listeners
func (t *Topic[T]) Clear() {
	t.removeEvents(func(*event[T]) bool { return true })
}

func (t *Topic[T]) addEvent(e Event[T], id uint64, isUnique bool) {
	t.events = append(t.events, newEvent(e, id, isUnique))
}

func (t *Topic[T]) removeIDs(ids []uint64) int {
	return t.removeEvents(func(e *event[T]) bool {
		return slices.Contains(ids, e.id)
	})
}

func (t *Topic[T]) removeTags(tags []reflect.Value) int {
	return t.removeEvents(func(e *event[T]) bool {
		return slices.Contains(tags, e.tag)
	})
}

func (t *Topic[T]) removeEvents(match func(*event[T]) bool) int {
	newEvents := make([]*event[T], 0, len(t.events))
	removed := 0
	for _, e := range t.events {
		if match(e) {
			e.removed.Store(true)
			removed++
			continue
		}
		newEvents = append(newEvents, e)
	}
	t.events = newEvents
	return removed
}

// dispatch walks a snapshot so listeners may subscribe or unsubscribe while
// it runs. A listener removed during the walk is not called.
func (t *Topic[T]) dispatch(topic string, data []T) error {
	snapshot := slices.Clone(t.events)
	for _, e := range snapshot {
		if e.removed.Load() {
			continue
		}
		if e.isUnique {
			if !e.hasCalled.CompareAndSwap(false, true) {
				continue
			}
			t.removeIDs([]uint64{e.id})
		}
		if err := e.Dispatch(topic, data); err != nil {
			return err
		}
	}
	return nil
}
