package log

import "time"

// Event is one captured step of an HTTP exchange with an ADT server.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ExchangeID ties a request to its response (UUID).
	ExchangeID string `cbor:"2,keyasint"`

	Direction Direction `cbor:"3,keyasint"`
	Layer     Layer     `cbor:"4,keyasint"`
	Category  Category  `cbor:"5,keyasint"`

	// Method and URL of the request this event belongs to.
	Method string `cbor:"6,keyasint,omitempty"`
	URL    string `cbor:"7,keyasint,omitempty"`

	// Status is the HTTP status code of a response, zero for requests.
	Status int `cbor:"8,keyasint,omitempty"`

	ContentType string `cbor:"9,keyasint,omitempty"`

	// Body holds at most MaxBodySize bytes of the payload.
	Body      []byte `cbor:"10,keyasint,omitempty"`
	Size      int    `cbor:"11,keyasint,omitempty"`
	Truncated bool   `cbor:"12,keyasint,omitempty"`

	// Duration is the round-trip time, set on responses.
	Duration time.Duration `cbor:"13,keyasint,omitempty"`

	Error *ErrorEventData `cbor:"14,keyasint,omitempty"`
}

// MaxBodySize is the number of body bytes kept in an Event.
const MaxBodySize = 64 << 10

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn is a response received from the server.
	DirectionIn Direction = 0
	// DirectionOut is a request sent to the server.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// ParseDirection returns the direction for a name as produced by String.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "IN", "in":
		return DirectionIn, true
	case "OUT", "out":
		return DirectionOut, true
	}
	return 0, false
}

// Layer indicates where the event was captured.
type Layer uint8

const (
	// LayerHTTP is the transport exchange.
	LayerHTTP Layer = 0
	// LayerXML is body decoding.
	LayerXML Layer = 1
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerHTTP:
		return "HTTP"
	case LayerXML:
		return "XML"
	default:
		return "UNKNOWN"
	}
}

// ParseLayer returns the layer for a name as produced by String.
func ParseLayer(s string) (Layer, bool) {
	switch s {
	case "HTTP", "http":
		return LayerHTTP, true
	case "XML", "xml":
		return LayerXML, true
	}
	return 0, false
}

// Category classifies the event.
type Category uint8

const (
	CategoryRequest  Category = 0
	CategoryResponse Category = 1
	CategoryError    Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryRequest:
		return "REQUEST"
	case CategoryResponse:
		return "RESPONSE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseCategory returns the category for a name as produced by String.
func ParseCategory(s string) (Category, bool) {
	switch s {
	case "REQUEST", "request":
		return CategoryRequest, true
	case "RESPONSE", "response":
		return CategoryResponse, true
	case "ERROR", "error":
		return CategoryError, true
	}
	return 0, false
}

// ErrorEventData describes a failed exchange.
type ErrorEventData struct {
	Layer   Layer  `cbor:"1,keyasint"`
	Message string `cbor:"2,keyasint"`

	// Type and Namespace of an exc:exception body, when one was returned.
	Type      string `cbor:"3,keyasint,omitempty"`
	Namespace string `cbor:"4,keyasint,omitempty"`
}

// Capture copies body into the event, keeping at most MaxBodySize bytes.
func (e *Event) Capture(body []byte) {
	e.Size = len(body)
	if len(body) > MaxBodySize {
		body = body[:MaxBodySize]
		e.Truncated = true
	}
	e.Body = append([]byte(nil), body...)
}

// IsFailure reports whether the event records an error or an HTTP status
// of 400 or above.
func (e Event) IsFailure() bool {
	return e.Error != nil || e.Status >= 400
}
