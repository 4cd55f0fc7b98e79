// internal/model/reader.go
package model

import "time"

// ConnectionState represents the lifecycle state of the reader connection
type ConnectionState string

const (
	StateConnected    ConnectionState = "connected"
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateError        ConnectionState = "error"
)

// CommandType identifies a reader command family
type CommandType string

const (
	CommandInventory CommandType = "inventory"
	CommandRead      CommandType = "read"
	CommandWrite     CommandType = "write"
)

// SerialEndpoint describes a physical serial port available on the host
type SerialEndpoint struct {
	Path         string `json:"path"`
	IsUSB        bool   `json:"is_usb"`
	Manufacturer string `json:"manufacturer,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
	Product      string `json:"product,omitempty"`
	VendorID     string `json:"vendor_id,omitempty"`
	ProductID    string `json:"product_id,omitempty"`
}

// TransportStats holds link-level counters of the open connection
type TransportStats struct {
	BytesWritten int64     `json:"bytes_written"`
	BytesRead    int64     `json:"bytes_read"`
	ScanCount    int64     `json:"scan_count"`
	ErrorCount   int64     `json:"error_count"`
	LastActivity time.Time `json:"last_activity,omitempty"`
}

// ReaderStatus is the externally visible state of the reader
type ReaderStatus struct {
	IsConnected bool            `json:"is_connected"`
	Port        string          `json:"port"`
	Position    int             `json:"position"`
	Status      ConnectionState `json:"status"`
	LastError   string          `json:"last_error,omitempty"`
	ConnectedAt *time.Time      `json:"connected_at,omitempty"`
	Stats       TransportStats  `json:"stats"`
}
