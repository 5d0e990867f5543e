package mediatypes

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want MediumType
	}{
		{"photo.jpg", MediumImage},
		{"photo.jpeg", MediumImage},
		{"photo.png", MediumImage},
		{"PHOTO.JPG", MediumImage},
		{"Photo.Jpeg", MediumImage},
		{"clip.mp4", MediumVideo},
		{"clip.webm", MediumVideo},
		{"clip.OGV", MediumVideo},
		{"notes.txt", MediumUnsupported},
		{"archive.zip", MediumUnsupported},
		{"image.gif", MediumUnsupported},
		{"image.webp", MediumUnsupported},
		{"clip.mkv", MediumUnsupported},
		{"noextension", MediumUnsupported},
		{"", MediumUnsupported},
		{"dir/sub/photo.png", MediumImage},
	}

	for _, tt := range tests {
		if got := Classify(tt.name); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestMimeType(t *testing.T) {
	tests := []struct {
		name     string
		wantMime string
		wantOK   bool
	}{
		{"a.jpg", "image/jpeg", true},
		{"a.JPEG", "image/jpeg", true},
		{"a.png", "image/png", true},
		{"a.mp4", "video/mp4", true},
		{"a.webm", "video/webm", true},
		{"a.ogv", "video/ogg", true},
		{"a.txt", "", false},
		{"a", "", false},
	}

	for _, tt := range tests {
		mime, ok := MimeType(tt.name)
		if mime != tt.wantMime || ok != tt.wantOK {
			t.Errorf("MimeType(%q) = (%q, %v), want (%q, %v)",
				tt.name, mime, ok, tt.wantMime, tt.wantOK)
		}
	}
}

func TestIsSupported(t *testing.T) {
	if !IsSupported("x.jpg") {
		t.Error("IsSupported(x.jpg) = false, want true")
	}
	if IsSupported("x.exe") {
		t.Error("IsSupported(x.exe) = true, want false")
	}
}
