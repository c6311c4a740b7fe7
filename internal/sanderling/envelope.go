package sanderling

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind is the variant of a decoded response.
type Kind int

const (
	KindSetupNotComplete Kind = iota + 1
	KindInProgress
	KindCompleted
)

func (k Kind) String() string {
	switch k {
	case KindSetupNotComplete:
		return "setup-not-complete"
	case KindInProgress:
		return "in-progress"
	case KindCompleted:
		return "completed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Envelope is a decoded response of the volatile process api, Value is only
// set when Kind is KindCompleted.
type Envelope[T any] struct {
	Kind  Kind
	Value T
}

func Completed[T any](value T) Envelope[T] {
	return Envelope[T]{Kind: KindCompleted, Value: value}
}

const (
	keySetupNotComplete = "SetupNotCompleteReponse"
	keyCompleteResponse = "RunInVolatileProcessCompleteResponse"
	keyRequest          = "RunInVolatileProcessRequest"
)

// the service speaks haskell-ish Maybe values
type maybe struct {
	Just    []json.RawMessage `json:"Just,omitempty"`
	Nothing []json.RawMessage `json:"Nothing,omitempty"`
}

type completeResponse struct {
	DurationInMilliseconds int64 `json:"durationInMilliseconds"`
	ExceptionToString      maybe `json:"exceptionToString"`
	ReturnValueToString    maybe `json:"returnValueToString"`
}

func decodeErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDecode, fmt.Sprintf(format, args...))
}

// Decode decodes a response body of the volatile process api into T.
func Decode[T any](body []byte) (Envelope[T], error) {
	var out Envelope[T]

	var top map[string]json.RawMessage
	err := json.Unmarshal(body, &top)
	if err != nil {
		return out, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if _, ok := top[keySetupNotComplete]; ok {
		out.Kind = KindSetupNotComplete
		return out, nil
	}

	rawComplete, ok := top[keyCompleteResponse]
	if !ok {
		return out, decodeErr("missing %s", keyCompleteResponse)
	}
	var complete []completeResponse
	err = json.Unmarshal(rawComplete, &complete)
	if err != nil {
		return out, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if len(complete) == 0 {
		return out, decodeErr("empty %s", keyCompleteResponse)
	}
	response := complete[0]

	if len(response.ExceptionToString.Just) > 0 {
		return out, decodeErr("remote exception: %s", rawText(response.ExceptionToString.Just[0]))
	}
	if len(response.ReturnValueToString.Just) == 0 {
		return out, decodeErr("missing return value")
	}

	payload, err := unwrapPayload(response.ReturnValueToString.Just[0])
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(payload, &out.Value)
	if err != nil {
		return out, fmt.Errorf("%w: payload: %w", ErrDecode, err)
	}
	out.Kind = KindCompleted
	return out, nil
}

// unwrapPayload returns arrays and objects as is and parses strings as an
// embedded json document.
func unwrapPayload(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, decodeErr("empty return value")
	}
	switch trimmed[0] {
	case '[', '{':
		return trimmed, nil
	case '"':
		var embedded string
		err := json.Unmarshal(trimmed, &embedded)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		if !json.Valid([]byte(embedded)) {
			return nil, decodeErr("return value is not a json document: %q", embedded)
		}
		return json.RawMessage(embedded), nil
	default:
		return nil, decodeErr("unexpected return value: %s", string(trimmed))
	}
}

func rawText(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}

func encodeResponse(returnValue, exception maybe) ([]byte, error) {
	return json.Marshal(map[string][]completeResponse{
		keyCompleteResponse: {{
			ExceptionToString:   exception,
			ReturnValueToString: returnValue,
		}},
	})
}

func nothing() maybe {
	return maybe{Nothing: []json.RawMessage{}}
}

// EncodeCompleted builds a completed response carrying payload as an
// embedded json string, the way the service usually answers.
func EncodeCompleted(payload any) ([]byte, error) {
	inner, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	embedded, err := json.Marshal(string(inner))
	if err != nil {
		return nil, err
	}
	return encodeResponse(maybe{Just: []json.RawMessage{embedded}}, nothing())
}

// EncodeCompletedInline builds a completed response carrying payload
// directly instead of as a string.
func EncodeCompletedInline(payload any) ([]byte, error) {
	inner, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return encodeResponse(maybe{Just: []json.RawMessage{inner}}, nothing())
}

// EncodeException builds a completed response whose call threw.
func EncodeException(message string) ([]byte, error) {
	text, err := json.Marshal(message)
	if err != nil {
		return nil, err
	}
	return encodeResponse(nothing(), maybe{Just: []json.RawMessage{text}})
}

func EncodeSetupNotComplete() []byte {
	return []byte(`{"SetupNotCompleteReponse":[]}`)
}

// Request operations understood by the volatile process.
const (
	OpListGameClientProcesses = "ListGameClientProcessesRequest"
	OpSearchUIRootAddress     = "SearchUIRootAddress"
	OpReadFromWindow          = "ReadFromWindow"
)

type SearchUIRootAddressArgs struct {
	ProcessID int `json:"processId"`
}

type ReadFromWindowArgs struct {
	WindowID      string `json:"windowId"`
	UIRootAddress string `json:"uiRootAddress"`
	// ParseText is "True" or "False".
	ParseText string `json:"ParseText"`
}

func parseTextFlag(parse bool) string {
	if parse {
		return "True"
	}
	return "False"
}

// EncodeRequest builds `{"RunInVolatileProcessRequest":[{<op>: <args>}]}`.
func EncodeRequest(op string, args any) ([]byte, error) {
	return json.Marshal(map[string][]map[string]any{
		keyRequest: {{op: args}},
	})
}

// Request is a decoded volatile process request.
type Request struct {
	Op   string
	Args json.RawMessage
}

// DecodeRequest is the inverse of EncodeRequest.
func DecodeRequest(body []byte) (Request, error) {
	var top map[string][]map[string]json.RawMessage
	err := json.Unmarshal(body, &top)
	if err != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	calls := top[keyRequest]
	if len(calls) != 1 || len(calls[0]) != 1 {
		return Request{}, decodeErr("expected exactly one call in %s", keyRequest)
	}
	for op, args := range calls[0] {
		return Request{Op: op, Args: args}, nil
	}
	return Request{}, decodeErr("unreachable")
}
