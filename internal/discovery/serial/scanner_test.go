package serial

import (
	"context"
	"errors"
	"testing"

	"go.bug.st/serial/enumerator"
	"go.uber.org/zap/zaptest"

	"rfid-service/internal/model"
)

func newTestScanner(t *testing.T, details []*enumerator.PortDetails, err error) *Scanner {
	s := NewScanner(zaptest.NewLogger(t))
	s.enumerate = func() ([]*enumerator.PortDetails, error) { return details, err }
	return s
}

func TestListPortsMapsDetails(t *testing.T) {
	s := newTestScanner(t, []*enumerator.PortDetails{
		{Name: "/dev/ttyS0"},
		{Name: "/dev/ttyUSB0", IsUSB: true, VID: "10c4", PID: "ea60", SerialNumber: "0001", Product: "CP2102 USB to UART"},
		nil,
	}, nil)

	ports, err := s.ListPorts(context.Background())
	if err != nil {
		t.Fatalf("ListPorts: %v", err)
	}

	want := []model.SerialEndpoint{
		{Path: "/dev/ttyS0"},
		{
			Path:         "/dev/ttyUSB0",
			IsUSB:        true,
			Manufacturer: "Silicon Labs",
			SerialNumber: "0001",
			Product:      "CP2102 USB to UART",
			VendorID:     "10C4",
			ProductID:    "EA60",
		},
	}
	if len(ports) != len(want) {
		t.Fatalf("ports = %+v", ports)
	}
	for i := range want {
		if ports[i] != want[i] {
			t.Errorf("port %d = %+v, want %+v", i, ports[i], want[i])
		}
	}
}

func TestListPortsEmpty(t *testing.T) {
	ports, err := newTestScanner(t, nil, nil).ListPorts(context.Background())
	if err != nil {
		t.Fatalf("ListPorts: %v", err)
	}
	if ports == nil || len(ports) != 0 {
		t.Errorf("ports = %#v, want empty non-nil slice", ports)
	}
}

func TestListPortsEnumeratorError(t *testing.T) {
	cause := errors.New("no permission")
	_, err := newTestScanner(t, nil, cause).ListPorts(context.Background())
	if !errors.Is(err, cause) {
		t.Fatalf("err = %v, want wrapped cause", err)
	}
}

func TestListPortsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestScanner(t, nil, nil).ListPorts(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestVendorDatabase(t *testing.T) {
	db := NewVendorDatabase()
	tests := []struct {
		id   string
		want string
	}{
		{"1a86", "QinHeng Electronics"},
		{"0x0403", "FTDI"},
		{" 067B ", "Prolific Technology Inc."},
		{"FFFF", ""},
	}
	for _, tt := range tests {
		if got := db.Manufacturer(tt.id); got != tt.want {
			t.Errorf("Manufacturer(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
	if db.IsKnownVendor("FFFF") {
		t.Error("FFFF reported as known")
	}
}
