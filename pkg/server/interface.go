/*
Package server implements msgpack IPC for swipe decoding.

The host streams msgpack-encoded requests on stdin and reads one msgpack
response per request on stdout. Logs go to stderr.

# IPC

Every request carries an ID, echoed back, and an action. A whole gesture can be
sent in one message:

	{"id": "g1", "a": "swipe", "pts": [{"x": 12, "y": 40, "t": 0.0}, ...], "l": 5}

The server answers with candidates, best first, and the decode time in µs:

	{"id": "g1", "s": [{"w": "hello", "r": 1, "sc": 1.7}, {"w": "help", "r": 2, "sc": 3.2}], "c": 2, "t": 145}

Hosts that want the key under the finger while drawing stream the gesture
instead. begin and sample answer with the current key, end answers like swipe:

	{"id": "g2", "a": "begin", "pts": [{"x": 12, "y": 40, "t": 0.0}], "k": "h"}
	{"id": "g3", "a": "sample", "pts": [{"x": 14, "y": 41, "t": 0.016}]}
	{"id": "g4", "a": "end", "l": 5}

Other actions:

	{"id": "c1", "a": "complete", "p": "hel", "l": 8}   // prefix completions
	{"id": "l1", "a": "layout", "lay": "grid"}           // switch layout
	{"id": "h1", "a": "health"}

Failures answer {"id": ..., "e": "message", "c": 400} and the server keeps
reading. 500 is reserved for internal errors.
*/
package server

// Actions understood by the server.
const (
	ActionSwipe    = "swipe"
	ActionBegin    = "begin"
	ActionSample   = "sample"
	ActionEnd      = "end"
	ActionComplete = "complete"
	ActionLayout   = "layout"
	ActionHealth   = "health"
)

// maxPrefixLen bounds completion prefixes.
const maxPrefixLen = 60

// Sample is one touch point on the wire. T is in seconds.
type Sample struct {
	X float64 `msgpack:"x"`
	Y float64 `msgpack:"y"`
	T float64 `msgpack:"t"`
}

// Request is every client message; fields beyond ID and Action depend on it.
type Request struct {
	ID     string   `msgpack:"id"`
	Action string   `msgpack:"a"`
	Points []Sample `msgpack:"pts,omitempty"`
	Limit  int      `msgpack:"l,omitempty"`
	Prefix string   `msgpack:"p,omitempty"`
	Layout string   `msgpack:"lay,omitempty"`
	// Key is the key the host saw the touch land on, for begin.
	Key string `msgpack:"k,omitempty"`
}

// Suggestion - minimal suggestion response
type Suggestion struct {
	Word  string  `msgpack:"w"`
	Rank  uint16  `msgpack:"r"`
	Score float64 `msgpack:"sc,omitempty"`
}

// SwipeResponse answers swipe, end and complete.
type SwipeResponse struct {
	ID          string       `msgpack:"id"`
	Suggestions []Suggestion `msgpack:"s"`
	Count       int          `msgpack:"c"`
	TimeTaken   int64        `msgpack:"t"`
	Hits        string       `msgpack:"h,omitempty"`
	Trace       string       `msgpack:"tr,omitempty"`
}

// KeyResponse answers begin and sample with the key under the finger.
type KeyResponse struct {
	ID      string `msgpack:"id"`
	Key     string `msgpack:"k,omitempty"`
	Samples int    `msgpack:"n"`
}

// StatusResponse answers layout and health, and announces readiness.
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
	Layout string `msgpack:"lay,omitempty"`
	Words  int    `msgpack:"words,omitempty"`
}

// ErrorResponse holds basic error information for failed requests
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
