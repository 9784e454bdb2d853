package board

import (
	"sync"
	"testing"

	"github.com/perch-labs/noticeboard/internal/domain"
)

func TestAuthorizeBinding(t *testing.T) {
	regA := NewRegistry("reg-a", ModeGated)
	regB := NewRegistry("reg-b", ModeGated)
	adminCap := NewCapability(regA, "admin")

	if err := adminCap.Authorize("admin", regA); err != nil {
		t.Fatalf("authorize against bound registry: %v", err)
	}
	if err := adminCap.Authorize("admin", regB); err != ErrCapabilityMismatch {
		t.Fatalf("authorize against other registry = %v, want ErrCapabilityMismatch", err)
	}
}

func TestAuthorizeHolder(t *testing.T) {
	reg := NewRegistry("reg-a", ModeGated)
	adminCap := NewCapability(reg, "admin")

	if err := adminCap.Authorize("intruder", reg); err != ErrNotHolder {
		t.Fatalf("authorize by non-holder = %v, want ErrNotHolder", err)
	}

	if err := adminCap.transfer("admin", "successor"); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if err := adminCap.Authorize("admin", reg); err != ErrNotHolder {
		t.Fatalf("previous holder still authorized: %v", err)
	}
	if err := adminCap.Authorize("successor", reg); err != nil {
		t.Fatalf("new holder rejected: %v", err)
	}
	if adminCap.Holder() != "successor" {
		t.Fatalf("holder = %q, want successor", adminCap.Holder())
	}
}

func TestTransferByNonHolder(t *testing.T) {
	reg := NewRegistry("reg-a", ModeGated)
	adminCap := NewCapability(reg, "admin")

	if err := adminCap.transfer("intruder", "intruder"); err != ErrNotHolder {
		t.Fatalf("transfer by non-holder = %v, want ErrNotHolder", err)
	}
	if adminCap.Holder() != "admin" {
		t.Fatalf("holder changed after rejected transfer: %q", adminCap.Holder())
	}
}

// TestTransferIsExclusive runs competing transfers from the same holder; at
// most one may win, and the loser must see ErrNotHolder.
func TestTransferIsExclusive(t *testing.T) {
	reg := NewRegistry("reg-a", ModeGated)
	adminCap := NewCapability(reg, "admin")

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, next := range []string{"left", "right"} {
		wg.Add(1)
		go func(slot int, next string) {
			defer wg.Done()
			results[slot] = adminCap.transfer("admin", domain.Principal(next))
		}(i, next)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		switch err {
		case nil:
			wins++
		case ErrNotHolder:
		default:
			t.Fatalf("unexpected transfer error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("transfer wins = %d, want exactly 1", wins)
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	reg := NewRegistry("reg-a", ModeOpen)
	if _, err := reg.Get("absent"); err != ErrNotFound {
		t.Fatalf("Get = %v, want ErrNotFound", err)
	}
	if reg.Len() != 0 {
		t.Fatalf("Len = %d, want 0", reg.Len())
	}
}
