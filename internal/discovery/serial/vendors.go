// internal/discovery/serial/vendors.go
package serial

import "strings"

// VendorDatabase maps USB vendor IDs of common USB-serial bridges to
// manufacturer names. RFID desktop readers ship behind one of these.
type VendorDatabase struct {
	vendors map[string]string
}

// NewVendorDatabase creates and initializes the vendor database
func NewVendorDatabase() *VendorDatabase {
	db := &VendorDatabase{
		vendors: make(map[string]string),
	}
	db.initializeDatabase()
	return db
}

func (db *VendorDatabase) initializeDatabase() {
	db.AddVendor("0403", "FTDI")
	db.AddVendor("067B", "Prolific Technology Inc.")
	db.AddVendor("10C4", "Silicon Labs")
	db.AddVendor("1A86", "QinHeng Electronics")
	db.AddVendor("04D8", "Microchip Technology Inc.")
	db.AddVendor("2341", "Arduino SA")
	db.AddVendor("0483", "STMicroelectronics")
}

// AddVendor registers or replaces a vendor name
func (db *VendorDatabase) AddVendor(vendorID, name string) {
	db.vendors[normalizeID(vendorID)] = name
}

// Manufacturer returns the vendor name for vendorID, or ""
func (db *VendorDatabase) Manufacturer(vendorID string) string {
	return db.vendors[normalizeID(vendorID)]
}

// IsKnownVendor reports whether vendorID is in the database
func (db *VendorDatabase) IsKnownVendor(vendorID string) bool {
	_, ok := db.vendors[normalizeID(vendorID)]
	return ok
}

func normalizeID(id string) string {
	id = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(id)), "0x")
	return strings.ToUpper(id)
}
