package contents

import "testing"

func TestKindForMIME(t *testing.T) {
	cases := map[string]MediaKind{
		"image/png":                 MediaImage,
		"IMAGE/JPEG":                MediaImage,
		"video/mp4":                 MediaVideo,
		"application/pdf":           MediaDesign,
		"image/vnd.adobe.photoshop": MediaDesign,
		"application/illustrator":   MediaDesign,
		"application/msword":        MediaDocument,
		"":                          MediaDocument,
	}
	for mime, want := range cases {
		if got := KindForMIME(mime); got != want {
			t.Fatalf("KindForMIME(%q): want=%s got=%s", mime, want, got)
		}
	}
}

func TestEditsRevisionWorthy(t *testing.T) {
	title := "x"
	if (Edits{Title: &title}).RevisionWorthy() {
		t.Fatalf("title-only edit should not be revision-worthy")
	}
	caption := ""
	if !(Edits{Caption: &caption}).RevisionWorthy() {
		t.Fatalf("present caption should be revision-worthy even when empty")
	}
	files := []FileAttachment{}
	if !(Edits{Files: &files}).RevisionWorthy() {
		t.Fatalf("present files should be revision-worthy")
	}
	if !(Edits{}).Empty() {
		t.Fatalf("zero edits should be empty")
	}
}
