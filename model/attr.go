package model

import "github.com/juju/errors"

// Attr is a typed accessor for one attribute.
//
//	var title = model.Attr[string]("title")
//	s, err := title.Get(m)
type Attr[T any] string

// Key returns the attribute name.
func (a Attr[T]) Key() string {
	return string(a)
}

// Get returns the attribute value as a T. An unset value yields the zero T.
func (a Attr[T]) Get(m *Model) (T, error) {
	var zero T
	v, err := m.Get(string(a))
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, errors.NotValidf("attribute %q holding %T", string(a), v)
	}
	return t, nil
}

// Set assigns v to the attribute.
func (a Attr[T]) Set(m *Model, v T, opts ...CallOption) error {
	return m.Set(string(a), v, opts...)
}
