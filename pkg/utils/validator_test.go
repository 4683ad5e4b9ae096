package utils

import "testing"

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "valid email", email: "mdupont@example.edu", wantErr: false},
		{name: "subdomain", email: "a.b@mail.example.edu", wantErr: false},
		{name: "missing at sign", email: "mdupont.example.edu", wantErr: true},
		{name: "missing tld", email: "mdupont@example", wantErr: true},
		{name: "empty", email: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("12345678"); err != nil {
		t.Errorf("ValidatePassword() error = %v for 8-char password", err)
	}
	if err := ValidatePassword("1234567"); err == nil {
		t.Errorf("ValidatePassword() accepted a 7-char password")
	}
}

func TestSanitizeString(t *testing.T) {
	got := SanitizeString("  hello\x00world\n  ")
	if got != "helloworld" {
		t.Errorf("SanitizeString() = %q, want %q", got, "helloworld")
	}
}
