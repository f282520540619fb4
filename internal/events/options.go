package events

type ProducerOptions func(e *EventProducer)

func WithOutputTopic(topic string) ProducerOptions {
	return func(e *EventProducer) {
		e.topic = topic
	}
}

func WithSource(source string) ProducerOptions {
	return func(e *EventProducer) {
		e.source = source
	}
}

// WithQueueLimit bounds the number of pending events.
func WithQueueLimit(limit int) ProducerOptions {
	return func(e *EventProducer) {
		e.queue = newQueue(limit)
	}
}
