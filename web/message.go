package web

// MessageType indicates the websocket message format
type MessageType int

const (
	// JSONMessage is a JSON encoded message
	JSONMessage MessageType = iota
	// BinaryMessage is raw binary data such as an encoded frame image
	BinaryMessage
)

// Message is queued for broadcast to every client of a Hub
type Message struct {
	Type MessageType
	Data []byte
}

// NewJSONMessage creates a JSON message from pre-encoded bytes
func NewJSONMessage(data []byte) Message {
	return Message{Type: JSONMessage, Data: data}
}

// NewBinaryMessage creates a binary message
func NewBinaryMessage(data []byte) Message {
	return Message{Type: BinaryMessage, Data: data}
}
