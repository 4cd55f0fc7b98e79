// internal/protocol/crc.go
package protocol

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"github.com/sigurn/crc16"
)

// The reader uses CRC-16/MCRF4XX: reflected polynomial 0x8408, preset 0xFFFF,
// no final XOR. The checksum travels low byte first.
var crcTable = crc16.MakeTable(crc16.CRC16_MCRF4XX)

// Checksum computes the reader CRC over data
func Checksum(data []byte) uint16 {
	return crc16.Checksum(data, crcTable)
}

// AppendCRC returns a copy of data followed by CRC low byte and CRC high byte
func AppendCRC(data []byte) []byte {
	crc := Checksum(data)
	out := make([]byte, 0, len(data)+2)
	out = append(out, data...)
	return append(out, byte(crc&0xFF), byte(crc>>8))
}

// EncodeHex parses a whitespace-insensitive hex command and appends its CRC
func EncodeHex(cmd string) ([]byte, error) {
	data, err := ParseHex(cmd)
	if err != nil {
		return nil, err
	}
	return AppendCRC(data), nil
}

// ParseHex decodes a hex string, ignoring any whitespace between digits
func ParseHex(cmd string) ([]byte, error) {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, cmd)

	data, err := hex.DecodeString(compact)
	if err != nil {
		return nil, fmt.Errorf("invalid hex command %q: %w", cmd, err)
	}
	return data, nil
}
