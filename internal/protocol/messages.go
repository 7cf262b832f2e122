package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
)

var errNotObject = errors.New("request must be a JSON object")

// Op names the operation a request asks for
type Op string

const (
	OpAct       Op = "act"
	OpEnd       Op = "end"
	OpTerminate Op = "terminate"
)

// Request is an inbound frame. The state is kept raw so that the strategy
// layer decides how leniently to read it.
type Request struct {
	Op    Op              `json:"op,omitempty"`
	State json.RawMessage `json:"state,omitempty"`

	hasOp    bool
	hasState bool
	raw      json.RawMessage
	fields   int
}

// NewRequest builds an outbound request for op with the given state.
func NewRequest(op Op, state any) (Request, error) {
	req := Request{Op: op, hasOp: true}
	if state != nil {
		data, err := json.Marshal(state)
		if err != nil {
			return Request{}, err
		}
		req.State = data
		req.hasState = true
	}
	return req, nil
}

// UnmarshalJSON implements json.Unmarshaler. The payload must be an object.
func (r *Request) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errNotObject
	}

	*r = Request{raw: append(json.RawMessage(nil), data...), fields: len(fields)}

	if op, ok := fields["op"]; ok {
		r.hasOp = true
		var name string
		if err := json.Unmarshal(op, &name); err != nil {
			name = string(bytes.TrimSpace(op))
		}
		r.Op = Op(name)
	}
	if state, ok := fields["state"]; ok {
		r.hasState = true
		r.State = state
	}
	return nil
}

// HasOp reports whether the payload carried an "op" field
func (r Request) HasOp() bool { return r.hasOp }

// HasState reports whether the payload carried a "state" field
func (r Request) HasState() bool { return r.hasState }

// Raw returns the payload the request was decoded from
func (r Request) Raw() json.RawMessage { return r.raw }

// Legacy reports whether the request is a bare state object sent by older
// orchestrators: no op, no state, and at least one field.
func (r Request) Legacy() bool {
	return !r.hasOp && !r.hasState && r.fields > 0
}

// StateOrEmpty returns the state to act on. Legacy requests use the whole
// payload; a missing state is treated as an empty object.
func (r Request) StateOrEmpty() json.RawMessage {
	switch {
	case r.Legacy():
		return r.raw
	case r.hasState:
		return r.State
	default:
		return json.RawMessage(`{}`)
	}
}

// Ack is the reply to a terminate request
type Ack struct {
	OK bool `json:"ok"`
}

// ErrorReply is sent when the op is not recognised
type ErrorReply struct {
	Error string `json:"error"`
}

// UnknownOp is the reply for unrecognised operations
var UnknownOp = ErrorReply{Error: "unknown op"}
