package inputval

import "testing"

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"user.name@example.com", true},
		{"user+tag@example.com", true},
		{"a@b.co", true},
		{"admin@mailserver", true},

		{"", false},
		{"   ", false},
		{"user", false},
		{"user@", false},
		{"@example.com", false},
		{".user@example.com", false},
		{"user..name@example.com", false},
		{"user@example..com", false},
		{"User Name <user@example.com>", false},
		{"user @example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestIsValidPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"+6281234567890", true},
		{"6281234567890", true},
		{"12", true},
		{"+0123", false},
		{"081234567890", false},
		{"+62 812 3456", false},
		{"+1234567890123456", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidPhone(tt.phone); got != tt.want {
			t.Errorf("IsValidPhone(%q) = %v, want %v", tt.phone, got, tt.want)
		}
	}
}

func TestIsValidLink(t *testing.T) {
	tests := []struct {
		link string
		want bool
	}{
		{"/news", true},
		{"/news/123?x=1", true},
		{"https://mtt.example.org/about", true},
		{"//evil.example.com", false},
		{"javascript:alert(1)", false},
		{"news", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidLink(tt.link); got != tt.want {
			t.Errorf("IsValidLink(%q) = %v, want %v", tt.link, got, tt.want)
		}
	}
}

func TestIsAlnumSpace(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Renungan Pagi 1", true},
		{"Kasih Allah", true},
		{"Café", true},
		{"Hello!", false},
		{"a-b", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsAlnumSpace(tt.in); got != tt.want {
			t.Errorf("IsAlnumSpace(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
