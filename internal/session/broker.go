package session

import "vascomart-client/internal/stomp"

// stompBroker adapts *stomp.Client to the Broker interface, narrowing
// the message handler to the raw body the pipeline consumes.
type stompBroker struct {
	client *stomp.Client
}

// NewStompBroker wraps a protocol client for use by a Session.
func NewStompBroker(client *stomp.Client) Broker {
	return &stompBroker{client: client}
}

func (b *stompBroker) OnConnect(fn func())             { b.client.OnConnect(fn) }
func (b *stompBroker) OnDisconnect(fn func(err error)) { b.client.OnDisconnect(fn) }
func (b *stompBroker) Activate()                       { b.client.Activate() }
func (b *stompBroker) Deactivate()                     { b.client.Deactivate() }

func (b *stompBroker) Subscribe(topic string, handler func(body []byte)) (Unsubscriber, error) {
	sub, err := b.client.Subscribe(topic, func(msg *stomp.Message) {
		handler(msg.Body)
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}
