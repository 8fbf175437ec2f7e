package media

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestValidateUpload(t *testing.T) {
	cases := []struct {
		name        string
		contentType string
		size        int64
		wantErr     error
	}{
		{"jpeg ok", "image/jpeg", 1024, nil},
		{"mp4 ok", "video/mp4", 10 << 20, nil},
		{"at limit", "image/png", MaxUploadBytes, nil},
		{"over limit", "image/png", MaxUploadBytes + 1, ErrTooLarge},
		{"pdf rejected", "application/pdf", 1024, ErrUnsupportedType},
		{"text rejected", "text/html", 10, ErrUnsupportedType},
		{"empty type", "", 10, ErrUnsupportedType},
	}
	for _, tc := range cases {
		if err := ValidateUpload(tc.contentType, tc.size); err != tc.wantErr {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.wantErr, err)
		}
	}
}

func TestRandomName(t *testing.T) {
	name := RandomName("fetch practice.MOV")
	if !strings.HasSuffix(name, ".mov") {
		t.Errorf("expected lowercased extension, got %s", name)
	}
	if strings.Contains(name, " ") || strings.Contains(name, "fetch") {
		t.Errorf("original name must not leak into %s", name)
	}
	if name == RandomName("fetch practice.MOV") {
		t.Error("expected names to be unique")
	}
}

func TestRandomNameStripsTraversal(t *testing.T) {
	name := RandomName("../../etc/passwd")
	if strings.Contains(name, "/") || strings.Contains(name, "..") {
		t.Errorf("expected traversal characters stripped, got %s", name)
	}
}

func TestDiskStoreRoundTrip(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	ctx := context.Background()

	body := "not really a jpeg"
	name := RandomName("photo.jpg")
	if err := store.Save(ctx, name, "image/jpeg", strings.NewReader(body), int64(len(body))); err != nil {
		t.Fatalf("Save: %v", err)
	}

	obj, err := store.Open(ctx, name)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer obj.Reader.Close()
	got, err := io.ReadAll(obj.Reader)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != body {
		t.Errorf("expected %q, got %q", body, got)
	}
	if obj.ContentType != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", obj.ContentType)
	}
}

func TestDiskStoreRejectsPathTraversal(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	ctx := context.Background()

	for _, name := range []string{"../escape.jpg", "a/b.jpg", "..", ""} {
		if _, err := store.Open(ctx, name); err != ErrNotFound {
			t.Errorf("Open(%q): expected ErrNotFound, got %v", name, err)
		}
		if err := store.Save(ctx, name, "image/jpeg", strings.NewReader("x"), 1); err != ErrNotFound {
			t.Errorf("Save(%q): expected ErrNotFound, got %v", name, err)
		}
	}
}

func TestDiskStoreDeleteMissingIsNoop(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	if err := store.Delete(context.Background(), "never-existed.jpg"); err != nil {
		t.Errorf("Delete of missing file should not error: %v", err)
	}
}
