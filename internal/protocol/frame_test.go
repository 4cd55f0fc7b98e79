package protocol

import (
	"bytes"
	"testing"

	"rfid-service/internal/model"
)

func TestInventoryCommandBaseHex(t *testing.T) {
	cmd := InventoryCommand(BroadcastAddress)
	if cmd.BaseHex != "06 FF 01 00 06" {
		t.Errorf("BaseHex = %q", cmd.BaseHex)
	}
	if cmd.Type != model.CommandInventory {
		t.Errorf("Type = %q", cmd.Type)
	}
}

func TestInventoryFrameGolden(t *testing.T) {
	frame, err := InventoryFrame(BroadcastAddress)
	if err != nil {
		t.Fatalf("InventoryFrame: %v", err)
	}

	want := []byte{0x06, 0xFF, 0x01, 0x00, 0x06, 0x28, 0xF1}
	if !bytes.Equal(frame.Bytes(), want) {
		t.Fatalf("frame = % X, want % X", frame.Bytes(), want)
	}
	if frame.String() != "06 FF 01 00 06 28 F1" {
		t.Errorf("String() = %q", frame.String())
	}
	if frame.Len() != 7 {
		t.Errorf("Len() = %d", frame.Len())
	}
}

func TestInventoryFrameAddress(t *testing.T) {
	frame, err := InventoryFrame(0x00)
	if err != nil {
		t.Fatalf("InventoryFrame: %v", err)
	}
	b := frame.Bytes()
	if b[1] != 0x00 {
		t.Errorf("address byte = %02X", b[1])
	}
	// 0x34FA over 06 00 01 00 06
	if b[5] != 0xFA || b[6] != 0x34 {
		t.Errorf("crc = %02X %02X, want FA 34", b[5], b[6])
	}
}

func TestBuildFrameCustomCommand(t *testing.T) {
	frame, err := BuildFrame(Command{Type: model.CommandRead, BaseHex: "04 FF 21"})
	if err != nil {
		t.Fatalf("BuildFrame: %v", err)
	}
	b := frame.Bytes()
	if !bytes.Equal(b[:3], []byte{0x04, 0xFF, 0x21}) {
		t.Errorf("prefix = % X", b[:3])
	}
	crc := bitwiseCRC(b[:3])
	if b[3] != byte(crc) || b[4] != byte(crc>>8) {
		t.Errorf("crc = %02X %02X, want %02X %02X", b[3], b[4], byte(crc), byte(crc>>8))
	}

	if _, err := BuildFrame(Command{Type: model.CommandWrite, BaseHex: "XYZ"}); err == nil {
		t.Error("expected error for malformed base hex")
	}
}

func TestFrameBytesReturnsCopy(t *testing.T) {
	frame, _ := InventoryFrame(BroadcastAddress)
	b := frame.Bytes()
	b[0] = 0xAA
	if frame.Bytes()[0] != 0x06 {
		t.Fatal("frame mutated through Bytes()")
	}
}
