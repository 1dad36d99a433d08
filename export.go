package eventbus

var defaultBus = New[any]()

// Default - return the package level bus
func Default() *Bus[any] {
	return defaultBus
}

// On - register topic event on the default bus
func On(topics string, e Event[any]) (Registrations, error) {
	return defaultBus.On(topics, e)
}

// Once - register once event on the default bus
func Once(topics string, e Event[any]) (Registrations, error) {
	return defaultBus.Once(topics, e)
}

// Off - remove topic registrations from the default bus
func Off(topics string, ids ...uint64) *Bus[any] {
	return defaultBus.Off(topics, ids...)
}

// Clean - clear all events of the default bus
func Clean() *Bus[any] {
	return defaultBus.Clean()
}

// Trigger - dispatch event on the default bus
func Trigger(topic string, data ...any) error {
	return defaultBus.Trigger(topic, data...)
}
