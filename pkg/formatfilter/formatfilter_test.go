package formatfilter

import "testing"

func TestParseFilter_Format(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    *uint32
		wantErr bool
	}{
		{"all", "all", nil, false},
		{"named", "argb8888", ptr(0), false},
		{"hex", "0x1", ptr(1), false},
		{"decimal", "875713112", ptr(875713112), false},
		{"unknown name", "not-a-format", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := ParseFilter(tt.spec)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseFilter(%q) expected error, got nil", tt.spec)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFilter(%q) unexpected error: %v", tt.spec, err)
			}
			if tt.want == nil && rule.Format != nil {
				t.Fatalf("ParseFilter(%q) Format = %v, want nil", tt.spec, *rule.Format)
			}
			if tt.want != nil {
				if rule.Format == nil || *rule.Format != *tt.want {
					t.Fatalf("ParseFilter(%q) Format = %v, want %v", tt.spec, rule.Format, *tt.want)
				}
			}
		})
	}
}

func TestParseFilter_Fourcc(t *testing.T) {
	// "NV12" as a 4-char ASCII code, byte-reversed into a little-endian
	// fourcc the way the wire format represents it.
	rule, err := ParseFilter("NV12")
	if err != nil {
		t.Fatalf("ParseFilter(NV12) unexpected error: %v", err)
	}
	want := uint32('N') | uint32('V')<<8 | uint32('1')<<16 | uint32('2')<<24
	if rule.Format == nil || *rule.Format != want {
		t.Fatalf("ParseFilter(NV12) Format = %v, want %#x", rule.Format, want)
	}
}

func TestParseFilter_Modifier(t *testing.T) {
	tests := []struct {
		name string
		spec string
		want uint64
	}{
		{"linear keyword", "all:linear", LinearModifier},
		{"invalid keyword", "all:invalid", InvalidModifier},
		{"hex", "all:0xFF", 0xFF},
		{"decimal", "all:42", 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := ParseFilter(tt.spec)
			if err != nil {
				t.Fatalf("ParseFilter(%q) unexpected error: %v", tt.spec, err)
			}
			if rule.Modifier == nil || *rule.Modifier != tt.want {
				t.Fatalf("ParseFilter(%q) Modifier = %v, want %v", tt.spec, rule.Modifier, tt.want)
			}
		})
	}
}

func TestFilter_Allowed_AllowWins(t *testing.T) {
	f, err := New([]string{"argb8888"}, []string{"all"})
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	if !f.Allowed(0, LinearModifier) {
		t.Fatal("explicit allow should win over a blanket deny")
	}
	if f.Allowed(1, LinearModifier) {
		t.Fatal("xrgb8888 should be denied by the blanket deny rule")
	}
}

func TestFilter_Allowed_DenyOnly(t *testing.T) {
	f, err := New(nil, []string{"nv12:invalid"})
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	nv12 := WaylandFormats["nv12"]
	if f.Allowed(nv12, InvalidModifier) {
		t.Fatal("nv12:invalid should be denied")
	}
	if !f.Allowed(nv12, LinearModifier) {
		t.Fatal("nv12:linear should pass through unaffected")
	}
	if !f.Allowed(WaylandFormats["argb8888"], LinearModifier) {
		t.Fatal("unrelated formats should pass through with no rules at all")
	}
}

func TestFilter_Allowed_NoRulesPassesEverything(t *testing.T) {
	f, err := New(nil, nil)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	if !f.Allowed(12345, 999) {
		t.Fatal("an empty filter should allow everything")
	}
}

func ptr(v uint32) *uint32 { return &v }
