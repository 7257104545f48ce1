package upload

import "testing"

func TestExtractPublicID(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{
			"https://res.cloudinary.com/demo/image/upload/v1712345678/rewear/items/abc/photo.jpg",
			"rewear/items/abc/photo",
		},
		{
			"https://res.cloudinary.com/demo/image/upload/rewear/items/abc/photo.png",
			"rewear/items/abc/photo",
		},
		{
			// Папка, начинающаяся с v, не принимается за версию
			"https://res.cloudinary.com/demo/image/upload/vintage/photo.jpg",
			"vintage/photo",
		},
		{"https://example.com/no-upload-segment.jpg", ""},
		{"не url", ""},
	}

	for _, tc := range cases {
		if got := extractPublicID(tc.url); got != tc.want {
			t.Errorf("extractPublicID(%q) = %q, ожидалось %q", tc.url, got, tc.want)
		}
	}
}
