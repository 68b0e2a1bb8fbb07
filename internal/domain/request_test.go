package domain

import (
	"encoding/json"
	"testing"
)

func TestNormalizeContactPhone(t *testing.T) {
	cases := []struct {
		in    string
		want  string
		valid bool
	}{
		{"0812345678", "0812345678", true},
		{" 0812345678 ", "0812345678", true},
		{"0000000000", "0000000000", true},
		{"812345678", "812345678", false},
		{"08123456789", "08123456789", false},
		{"081234567", "081234567", false},
		{"1812345678", "1812345678", false},
		{"08-1234567", "08-1234567", false},
		{"+66812345678", "+66812345678", false},
		{"08123456７8", "08123456７8", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizeContactPhone(tc.in)
		if ok != tc.valid || got != tc.want {
			t.Fatalf("NormalizeContactPhone(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.valid)
		}
	}
}

func TestRequestPatchDecodesAbsentNullAndValue(t *testing.T) {
	var patch struct {
		Status       Optional[string] `json:"status"`
		ContactPhone Optional[string] `json:"contactPhone"`
		UID          Optional[int64]  `json:"uid"`
	}
	if err := json.Unmarshal([]byte(`{"status":"completed","uid":null}`), &patch); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !patch.Status.Set || patch.Status.Null || patch.Status.Value != "completed" {
		t.Fatalf("status decoded as %+v", patch.Status)
	}
	if patch.ContactPhone.Set {
		t.Fatalf("absent field must stay unset")
	}
	if !patch.UID.Set || !patch.UID.Null || patch.UID.Ptr() != nil {
		t.Fatalf("explicit null decoded as %+v", patch.UID)
	}
}

func TestRequestPatchEmpty(t *testing.T) {
	if !(RequestPatch{}).Empty() {
		t.Fatalf("zero patch should be empty")
	}
	if (RequestPatch{OwnerID: Null[int64]()}).Empty() {
		t.Fatalf("explicit null owner is a change")
	}
	if (RequestPatch{DeviceModel: Some("CCTV-4K")}).Empty() {
		t.Fatalf("device model is a change")
	}
}

func TestScopeOwnerFilter(t *testing.T) {
	if AdminScope().OwnerFilter() != nil {
		t.Fatalf("admin scope must be unrestricted")
	}
	if f := OwnerScope(7).OwnerFilter(); f == nil || *f != 7 {
		t.Fatalf("owner scope filter = %v", f)
	}
	if f := (Scope{}).OwnerFilter(); f == nil || *f != 0 {
		t.Fatalf("zero scope must not be unrestricted")
	}
}
