package registry

import "testing"

func TestEffectiveVersion(t *testing.T) {
	tests := []struct {
		name      string
		requested string
		latest    string
		want      string
		wantErr   bool
	}{
		{"no request uses latest", "", "1.5.0", "1.5.0", false},
		{"newer request honoured", "2.0.0", "1.5.0", "2.0.0", false},
		{"equal request honoured", "1.5.0", "1.5.0", "1.5.0", false},
		{"older request replaced by latest", "1.0.0", "1.5.0", "1.5.0", false},
		{"prerelease of latest is older", "1.5.0-beta.1", "1.5.0", "1.5.0", false},
		{"prerelease of next is newer", "1.6.0-beta.1", "1.5.0", "1.6.0-beta.1", false},
		{"v prefix tolerated", "v2.0.0", "1.5.0", "2.0.0", false},
		{"invalid request", "latest", "1.5.0", "", true},
		{"partial request", "2", "1.5.0", "", true},
		{"invalid latest", "", "nope", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EffectiveVersion(tt.requested, tt.latest)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("EffectiveVersion(%q, %q) = %q, want %q", tt.requested, tt.latest, got, tt.want)
			}
		})
	}
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b    string
		want    int
		wantErr bool
	}{
		{"1.0.0", "1.0.1", -1, false},
		{"1.2.3", "1.2.3", 0, false},
		{"v2.0.0", "1.9.9", 1, false},
		{"dev", "1.0.0", 0, true},
	}
	for _, tt := range tests {
		got, err := CompareVersions(tt.a, tt.b)
		if tt.wantErr {
			if err == nil {
				t.Errorf("CompareVersions(%q, %q): expected error", tt.a, tt.b)
			}
			continue
		}
		if err != nil {
			t.Fatalf("CompareVersions(%q, %q): %v", tt.a, tt.b, err)
		}
		if got != tt.want {
			t.Errorf("CompareVersions(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestValidateVersion(t *testing.T) {
	if err := ValidateVersion("5.0.1"); err != nil {
		t.Errorf("ValidateVersion(5.0.1) = %v", err)
	}
	if err := ValidateVersion("next"); err == nil {
		t.Error("ValidateVersion(next) should fail")
	}
}
