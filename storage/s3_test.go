package storage

import "testing"

func TestExtractKeyFromURL(t *testing.T) {
	s := &StorageService{bucket: "oquvmarkaz-media", region: "ap-southeast-1"}

	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			"avatar url",
			"https://oquvmarkaz-media.s3.ap-southeast-1.amazonaws.com/avatars/4/2026/08/29/a1b2c3d4.png",
			"avatars/4/2026/08/29/a1b2c3d4.png",
		},
		{
			"receipt url",
			"https://oquvmarkaz-media.s3.ap-southeast-1.amazonaws.com/receipts/12/2026/01/05/deadbeef.jpg",
			"receipts/12/2026/01/05/deadbeef.jpg",
		},
		{"not an s3 url", "https://example.com/file.png", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.extractKeyFromURL(tt.url); got != tt.want {
				t.Errorf("extractKeyFromURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestGetContentType(t *testing.T) {
	s := &StorageService{}

	tests := []struct {
		ext  string
		want string
	}{
		{"jpg", "image/jpeg"},
		{"JPEG", "image/jpeg"},
		{"png", "image/png"},
		{"webp", "image/webp"},
		{"pdf", "application/pdf"},
		{"exe", "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := s.getContentType(tt.ext); got != tt.want {
			t.Errorf("getContentType(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}
