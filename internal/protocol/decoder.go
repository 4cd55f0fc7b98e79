// internal/protocol/decoder.go
package protocol

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"rfid-service/internal/model"
)

// Status bytes the firmware embeds in responses when no tag was inventoried
// (0xFB) or the command failed (0xFE).
const (
	StatusNoTagOrTimeout byte = 0xFB
	StatusCmdError       byte = 0xFE
)

const uidLength = 3

var sentinels = []string{
	fmt.Sprintf("%02X", StatusNoTagOrTimeout),
	fmt.Sprintf("%02X", StatusCmdError),
}

// RenderHex renders bytes as uppercase hex pairs joined by single spaces
func RenderHex(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	pairs := make([]string, len(data))
	for i, b := range data {
		pairs[i] = strings.ToUpper(hex.EncodeToString([]byte{b}))
	}
	return strings.Join(pairs, " ")
}

// DecodeInventory classifies a collected inventory response.
// Any sentinel anywhere in the rendered response, or an empty response, means
// no tag. Otherwise the UID is the trailing three bytes.
func DecodeInventory(response []byte, position int, observedAt time.Time) *model.TagReading {
	reading := &model.TagReading{
		Timestamp: observedAt,
		Position:  position,
	}

	rendered := RenderHex(response)
	if rendered == "" || containsSentinel(rendered) {
		reading.Status = model.TagStatusNotDetected
		return reading
	}

	compact := strings.ReplaceAll(rendered, " ", "")
	if len(compact) < uidLength*2 {
		reading.Status = model.TagStatusError
		return reading
	}

	reading.UID = compact[len(compact)-uidLength*2:]
	reading.Status = model.TagStatusSuccess
	return reading
}

func containsSentinel(rendered string) bool {
	for _, s := range sentinels {
		if strings.Contains(rendered, s) {
			return true
		}
	}
	return false
}
