package gpu

import "sync"

// MinResidencyOS is the first platform version exposing residency sets
var MinResidencyOS = OSVersion{Major: 15}

var (
	residencyOnce      sync.Once
	residencySupported bool
)

// SupportsResidencySets evaluates the capability query once per process
// The first device asked decides the cached answer
func SupportsResidencySets(d *Device) bool {
	residencyOnce.Do(func() {
		residencySupported = d.OSVersion().AtLeast(MinResidencyOS) && d.SupportsFamily(FamilyApple6)
	})
	return residencySupported
}
