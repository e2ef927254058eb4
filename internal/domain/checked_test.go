package domain

import (
	"math"
	"testing"
)

func TestCheckedAdd(t *testing.T) {
	t.Parallel()

	if got, ok := CheckedAdd[uint8](254, 1); !ok || got != 255 {
		t.Errorf("CheckedAdd(254, 1) = %d, %v", got, ok)
	}
	if _, ok := CheckedAdd[uint8](255, 1); ok {
		t.Error("CheckedAdd(255, 1) should overflow")
	}
	if _, ok := CheckedAdd[uint32](math.MaxUint32, 1); ok {
		t.Error("uint32 overflow not detected")
	}
	if got, ok := CheckedAdd[uint64](math.MaxUint64, 0); !ok || got != math.MaxUint64 {
		t.Errorf("adding zero must not overflow: %d, %v", got, ok)
	}
}

func TestCheckedSub(t *testing.T) {
	t.Parallel()

	if got, ok := CheckedSub[uint64](10, 3); !ok || got != 7 {
		t.Errorf("CheckedSub(10, 3) = %d, %v", got, ok)
	}
	if _, ok := CheckedSub[uint64](3, 10); ok {
		t.Error("CheckedSub(3, 10) should fail")
	}
}
