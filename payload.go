package jsbridge

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ResponseEvent is the reserved event name, used exclusively to deliver
// [Response] values to the host.
const ResponseEvent = "_jsbridge_response"

// Response correlates the outcome of a call with its request id.
type Response struct {
	ReqID int64 `json:"reqId"`
	// Response is the fulfilled value or the failure reason, nil (null) if
	// there was none.
	Response any  `json:"response"`
	IsError  bool `json:"isError"`
}

// RawPayload is sent verbatim, e.g. pre-encoded JSON.
type RawPayload string

// EncodePayload renders data as the string form accepted by both native
// transports. Strings, byte slices and [RawPayload] pass through, anything
// else is encoded as JSON.
func EncodePayload(data any) (string, error) {
	switch data := data.(type) {
	case string:
		return data, nil
	case RawPayload:
		return string(data), nil
	case []byte:
		return string(data), nil
	case jsoniter.RawMessage:
		return string(data), nil
	}
	return json.MarshalToString(data)
}

// DecodeResponse parses the payload of a [ResponseEvent].
func DecodeResponse(payload string) (Response, error) {
	var res Response
	err := json.UnmarshalFromString(payload, &res)
	return res, err
}

// errorReason renders failure reasons as something that survives encoding.
func errorReason(reason any) any {
	if err, ok := reason.(error); ok {
		return err.Error()
	}
	return reason
}
