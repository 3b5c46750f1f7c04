package sanitizer

import (
	"reflect"
	"testing"
)

func TestSanitizeTitleOrAddress(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trim and slug",
			input: "  Cozy Beach House  ",
			want:  "cozy_beach_house",
		},
		{
			name:  "punctuation collapses",
			input: "12 Ocean Dr., Apt #4",
			want:  "12_ocean_dr_apt_4",
		},
		{
			name:  "multiple separators collapse",
			input: "Loft --- Downtown",
			want:  "loft_downtown",
		},
		{
			name:  "unicode letters preserved",
			input: "Café del Mar",
			want:  "café_del_mar",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "only punctuation",
			input: "!!!",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeTitleOrAddress(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeTitleOrAddress(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeCityOrAmenity(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "digits dropped",
			input: "wifi 5G",
			want:  "wifi_g",
		},
		{
			name:  "city with spaces",
			input: "Tel Aviv",
			want:  "tel_aviv",
		},
		{
			name:  "already clean",
			input: "pool",
			want:  "pool",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeCityOrAmenity(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeCityOrAmenity(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeFreeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "collapse inner whitespace",
			input: "Great   stay,\twould\nreturn",
			want:  "Great stay, would return",
		},
		{
			name:  "case preserved",
			input: "  Amazing VIEW  ",
			want:  "Amazing VIEW",
		},
		{
			name:  "only whitespace",
			input: " \t\n ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFreeText(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeFreeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeSlice(t *testing.T) {
	got := SanitizeSlice([]string{" WiFi ", "wifi", "", "Pool", "!!!"}, SanitizeCityOrAmenity)
	want := []string{"wifi", "pool"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SanitizeSlice() = %v, want %v", got, want)
	}
}

func TestSanitizeURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "adds scheme and strips www",
			input: "www.example.com/photos/1.jpg",
			want:  "https://example.com/photos/1.jpg",
		},
		{
			name:  "strips utm params",
			input: "https://example.com/p?utm_source=x&size=large",
			want:  "https://example.com/p?size=large",
		},
		{
			name:  "invalid url",
			input: "://",
			want:  "",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeURL(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeURLSlice(t *testing.T) {
	got := SanitizeURLSlice([]string{"www.example.com/a.jpg", "https://example.com/a.jpg", "not a url at all ://"})
	want := []string{"https://example.com/a.jpg"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SanitizeURLSlice() = %v, want %v", got, want)
	}
}
