package jsbridge

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/joeycumines/go-utilpkg/jsonenc"
)

// DefaultScheme is the scheme tag of handshake signals.
const DefaultScheme = "jsbridge"

// Signal is the out-of-band notification of the handshake protocol, telling
// a pull-only host which event was emitted, and where to fetch its payload.
type Signal struct {
	EventName string `json:"eventName"`
	ResID     int64  `json:"resId"`
}

// EncodeSignal formats a signal as `<scheme>:{"eventName":...,"resId":...}`.
func EncodeSignal(scheme string, signal Signal) string {
	b := make([]byte, 0, len(scheme)+len(signal.EventName)+32)
	b = append(b, scheme...)
	b = append(b, `:{"eventName":`...)
	b = jsonenc.AppendString(b, signal.EventName)
	b = append(b, `,"resId":`...)
	b = strconv.AppendInt(b, signal.ResID, 10)
	b = append(b, '}')
	return string(b)
}

// ErrNotSignal is returned by ParseSignal if the input does not carry the
// expected scheme.
var ErrNotSignal = errors.New("jsbridge: not a signal")

// ParseSignal decodes a signal produced by [EncodeSignal]. If the scheme
// does not match, ErrNotSignal is returned.
func ParseSignal(scheme string, src string) (Signal, error) {
	body, ok := strings.CutPrefix(src, scheme+":")
	if !ok {
		return Signal{}, ErrNotSignal
	}
	var signal Signal
	if err := json.UnmarshalFromString(body, &signal); err != nil {
		return Signal{}, fmt.Errorf("jsbridge: malformed signal: %w", err)
	}
	if signal.ResID <= 0 {
		return Signal{}, fmt.Errorf("jsbridge: malformed signal: invalid resId %d", signal.ResID)
	}
	return signal, nil
}
