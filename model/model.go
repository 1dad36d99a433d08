// Package model implements reactive key/value models.
//
// A model holds a value for every key of its schema and emits an event each
// time one of them changes. Keys outside the schema are stored as plain,
// non-reactive fields.
//
//	todo := model.Define(model.Schema{"title": "", "done": false})
//	m := todo.New(map[string]any{"title": "write docs"})
//	m.On("change:done", eventbus.Func[any](func(v ...any) error {
//		fmt.Println("done is now", v[0])
//		return nil
//	}))
//	m.Set("done", true)
package model

import (
	"encoding/json"
	"fmt"
	"sort"

	eventbus "github.com/lockp111/go-eventbus/v2"
)

// IDKey is the attribute holding a model's identifier.
const IDKey = "id"

// Events emitted by a model.
const (
	EventChange        = "change"
	EventRefresh       = "refresh"
	EventBeforeDestroy = "before:destroy"
	EventDestroy       = "destroy"
)

// ChangeEvent returns the event emitted when key changes.
func ChangeEvent(key string) string {
	return EventChange + ":" + key
}

// Schema maps reactive attribute names to their default values.
type Schema map[string]any

func (s Schema) clone() Schema {
	c := make(Schema, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// Type is a model type. Every model it creates shares its schema.
type Type struct {
	schema Schema
}

// Define returns a model type for schema. The schema is copied.
func Define(schema Schema) *Type {
	return &Type{schema: schema.clone()}
}

// Schema returns a copy of the type's schema.
func (t *Type) Schema() Schema {
	return t.schema.clone()
}

// New creates a model initialised from the schema defaults overlaid with attrs.
func (t *Type) New(attrs map[string]any) *Model {
	m := &Model{
		Bus:    eventbus.New[any](),
		schema: t.schema,
		fields: make(map[string]any),
	}
	m.reset()
	m.overlay(attrs)
	return m
}

// Model is a reactive bag of attributes.
type Model struct {
	*eventbus.Bus[any]

	schema Schema
	data   map[string]any
	fields map[string]any
}

// New creates a model of an anonymous type with the given schema.
func New(schema Schema, attrs map[string]any) *Model {
	return Define(schema).New(attrs)
}

// Has reports whether key is a reactive attribute.
func (m *Model) Has(key string) bool {
	_, ok := m.schema[key]
	return ok
}

// Keys returns the schema keys in sorted order.
func (m *Model) Keys() []string {
	keys := make([]string, 0, len(m.schema))
	for k := range m.schema {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Schema returns a copy of the model's schema.
func (m *Model) Schema() Schema {
	return m.schema.clone()
}

// IsDestroyed reports whether Destroy has completed.
func (m *Model) IsDestroyed() bool {
	return m.data == nil
}

// ID returns the identifier attribute as a string, or "" when unset.
func (m *Model) ID() string {
	v, err := m.Get(IDKey)
	if err != nil || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Get returns the value of key. Keys outside the schema read the plain field,
// which is nil when never assigned.
func (m *Model) Get(key string) (any, error) {
	if m.IsDestroyed() {
		return nil, ErrDestroyed
	}
	if m.Has(key) {
		return m.data[key], nil
	}
	return m.fields[key], nil
}

// Set assigns value to key.
//
// For a schema key holding a different value it emits "change" with
// (key, value) and "change:<key>" with (value), unless the Silent option is
// given. Setting the current value does nothing.
func (m *Model) Set(key string, value any, opts ...CallOption) error {
	if m.IsDestroyed() {
		return ErrDestroyed
	}
	if !m.Has(key) {
		m.fields[key] = value
		return nil
	}
	if identical(m.data[key], value) {
		return nil
	}

	m.data[key] = value
	if NewCallOptions(opts...).Silent {
		return nil
	}
	if err := m.Trigger(EventChange, key, value); err != nil {
		return err
	}
	return m.Trigger(ChangeEvent(key), value)
}

// Refresh loads data into the model, after resetting every attribute to its
// default when replace is set. Only "refresh" is emitted.
func (m *Model) Refresh(data map[string]any, replace bool) error {
	if m.IsDestroyed() {
		return ErrDestroyed
	}
	if replace {
		m.reset()
	}
	m.overlay(data)
	return m.Trigger(EventRefresh, m)
}

// Destroy emits "before:destroy", releases the data and emits "destroy".
// A destroyed model cannot be used again.
func (m *Model) Destroy() error {
	if m.IsDestroyed() {
		return ErrDestroyed
	}
	if err := m.Trigger(EventBeforeDestroy, m); err != nil {
		return err
	}
	m.data = nil
	return m.Trigger(EventDestroy, m)
}

// ToJSON returns a fresh map of the schema keys and their values. It is nil
// for a destroyed model.
func (m *Model) ToJSON() map[string]any {
	if m.IsDestroyed() {
		return nil
	}
	out := make(map[string]any, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (m *Model) MarshalJSON() ([]byte, error) {
	if m.IsDestroyed() {
		return nil, ErrDestroyed
	}
	return json.Marshal(m.ToJSON())
}

func (m *Model) reset() {
	m.data = make(map[string]any, len(m.schema))
	for k, v := range m.schema {
		m.data[k] = v
	}
}

func (m *Model) overlay(attrs map[string]any) {
	for k, v := range attrs {
		if m.Has(k) {
			m.data[k] = v
			continue
		}
		m.fields[k] = v
	}
}
