package extract

import (
	"strings"
	"testing"
)

func TestJoinSectionsLabelsEachFile(t *testing.T) {
	got := JoinSections([]Section{
		{Name: "notes.txt", Text: "Mitochondria produce ATP."},
		{Name: "slides.pdf", Text: "The cell membrane is selectively permeable."},
	})

	want := "--- notes.txt ---\nMitochondria produce ATP.\n\n--- slides.pdf ---\nThe cell membrane is selectively permeable."
	if got != want {
		t.Errorf("JoinSections = %q, want %q", got, want)
	}
}

func TestJoinSectionsSkipsEmpty(t *testing.T) {
	got := JoinSections([]Section{
		{Name: "empty.txt", Text: "   \n"},
		{Name: "notes.txt", Text: "content"},
	})
	if strings.Contains(got, "empty.txt") {
		t.Errorf("empty section was not skipped: %q", got)
	}
	if got != "--- notes.txt ---\ncontent" {
		t.Errorf("JoinSections = %q", got)
	}
}

func TestJoinSectionsEmptyInput(t *testing.T) {
	if got := JoinSections(nil); got != "" {
		t.Errorf("JoinSections(nil) = %q, want empty", got)
	}
}

func TestFromUploadPlainText(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		mime     string
	}{
		{"txt extension", "notes.txt", "application/octet-stream"},
		{"md extension", "README.md", ""},
		{"text mime", "notes.data", "text/plain"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromUpload(tc.filename, tc.mime, []byte("hello"))
			if err != nil {
				t.Fatalf("FromUpload: %v", err)
			}
			if got != "hello" {
				t.Errorf("FromUpload = %q, want %q", got, "hello")
			}
		})
	}
}

func TestFromUploadUnsupportedIsSilent(t *testing.T) {
	got, err := FromUpload("photo.png", "image/png", []byte{0x89, 0x50})
	if err != nil {
		t.Fatalf("FromUpload: %v", err)
	}
	if got != "" {
		t.Errorf("FromUpload = %q, want empty for unsupported type", got)
	}
}

func TestFromUploadBadPDF(t *testing.T) {
	if _, err := FromUpload("broken.pdf", "application/pdf", []byte("not a pdf")); err == nil {
		t.Error("expected error for invalid PDF data")
	}
}
