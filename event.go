package eventbus

import (
	"reflect"
	"sync/atomic"
)

// ALL - The key use to listen all the topics
const ALL = "*"

// Event interface
type Event[T any] interface {
	Dispatch(topic string, data []T) error
}

// Func - adapt a plain function to Event, the topic is dropped
type Func[T any] func(data ...T) error

// Dispatch - call f with the data
func (f Func[T]) Dispatch(_ string, data []T) error {
	return f(data...)
}

// TopicFunc - adapt a function that wants the topic to Event
type TopicFunc[T any] func(topic string, data []T) error

// Dispatch - call f with the topic and the data
func (f TopicFunc[T]) Dispatch(topic string, data []T) error {
	return f(topic, data)
}

// Registration - one listener registered under one topic
type Registration struct {
	Topic string
	ID    uint64
}

// Registrations - the result of a subscribe call
type Registrations []Registration

// IDs - return the registration ids for a topic
func (rs Registrations) IDs(topic string) []uint64 {
	ids := make([]uint64, 0, len(rs))
	for _, r := range rs {
		if r.Topic == topic {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// event struct
type event[T any] struct {
	Event[T]
	id        uint64
	tag       reflect.Value
	isUnique  bool
	hasCalled atomic.Bool
	removed   atomic.Bool
}

func newEvent[T any](e Event[T], id uint64, isUnique bool) *event[T] {
	return &event[T]{Event: e, id: id, tag: reflect.ValueOf(e), isUnique: isUnique}
}

func isNilEvent[T any](e Event[T]) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	switch v.Kind() {
	case reflect.Func, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
