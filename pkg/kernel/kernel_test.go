package kernel_test

import (
	"testing"

	"github.com/Abraxas-365/fittsee/pkg/kernel"
)

func TestParseSize(t *testing.T) {
	if s, ok := kernel.ParseSize(" xl "); !ok || s != kernel.SizeXL {
		t.Errorf("expected XL, got %q ok=%v", s, ok)
	}
	if _, ok := kernel.ParseSize("XXL"); ok {
		t.Error("expected XXL to be rejected")
	}
}

func TestAuthContextAccess(t *testing.T) {
	owner := kernel.UserID("u-1")

	customer := &kernel.AuthContext{UserID: owner, Role: kernel.RoleCustomer}
	other := &kernel.AuthContext{UserID: "u-2", Role: kernel.RoleCustomer}
	admin := &kernel.AuthContext{UserID: "u-3", Role: kernel.RoleAdmin}

	if !customer.CanAccess(owner) {
		t.Error("owner should access own resource")
	}
	if other.CanAccess(owner) {
		t.Error("non-owner customer should be denied")
	}
	if !admin.CanAccess(owner) {
		t.Error("admin should access any resource")
	}

	var nilCtx *kernel.AuthContext
	if nilCtx.CanAccess(owner) || nilCtx.IsValid() {
		t.Error("nil context should never be granted access")
	}
}

func TestPagination(t *testing.T) {
	opts := kernel.PaginationOptions{Page: 0, PageSize: 500}.Normalize(20, 100)
	if opts.Page != 1 || opts.PageSize != 100 {
		t.Fatalf("unexpected normalized options: %+v", opts)
	}

	page := kernel.NewPaginated([]string{"a"}, 2, 1, 3)
	if page.Page.Pages != 3 || !page.HasNext() {
		t.Errorf("unexpected page metadata: %+v", page.Page)
	}
	if kernel.NewPaginated[string](nil, 1, 10, 0).Items == nil {
		t.Error("expected empty slice rather than nil")
	}
}
