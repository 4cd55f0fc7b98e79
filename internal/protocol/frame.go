// internal/protocol/frame.go
package protocol

import (
	"fmt"

	"rfid-service/internal/model"
)

// Reader command layout: Len(1) Adr(1) Cmd(1) Data(n) CRC_L(1) CRC_H(1)
const (
	BroadcastAddress byte = 0xFF
	CmdInventory     byte = 0x01
)

// Command is the pre-CRC form of a reader command
type Command struct {
	Type    model.CommandType
	BaseHex string
}

// CommandFrame is a command with its CRC suffix, ready to transmit
type CommandFrame struct {
	Type  model.CommandType
	bytes []byte
}

// Bytes returns a copy of the frame contents
func (f CommandFrame) Bytes() []byte {
	out := make([]byte, len(f.bytes))
	copy(out, f.bytes)
	return out
}

// Len returns the frame length including CRC
func (f CommandFrame) Len() int {
	return len(f.bytes)
}

// String renders the frame as spaced uppercase hex
func (f CommandFrame) String() string {
	return RenderHex(f.bytes)
}

// InventoryCommand returns the single-tag inventory command for the given reader address
func InventoryCommand(address byte) Command {
	return Command{
		Type:    model.CommandInventory,
		BaseHex: fmt.Sprintf("06 %02X %02X 00 06", address, CmdInventory),
	}
}

// BuildFrame runs the command through the CRC encoder
func BuildFrame(cmd Command) (CommandFrame, error) {
	data, err := EncodeHex(cmd.BaseHex)
	if err != nil {
		return CommandFrame{}, fmt.Errorf("failed to build %s frame: %w", cmd.Type, err)
	}
	return CommandFrame{Type: cmd.Type, bytes: data}, nil
}

// InventoryFrame builds the inventory frame for the given reader address
func InventoryFrame(address byte) (CommandFrame, error) {
	return BuildFrame(InventoryCommand(address))
}
