// Package hub fans live focus events out to dashboard websockets. Each
// watcher may follow a single session topic or everything.
package hub

import "encoding/json"

// Message is a pre-encoded text frame. An empty Topic reaches every client.
type Message struct {
	Topic string
	Data  []byte
}

// NewJSONMessage encodes v into a message for topic
func NewJSONMessage(topic string, v interface{}) (Message, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Message{}, err
	}
	return Message{Topic: topic, Data: data}, nil
}

// subscribeRequest is what a watcher sends to change its topic.
type subscribeRequest struct {
	Session string `json:"session"`
}
