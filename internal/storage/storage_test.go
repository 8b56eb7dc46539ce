package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"maintdash/internal/models"
)

func TestDocumentKey(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		wantCT  string
		wantErr bool
	}{
		{"pdf", "quote.pdf", "application/pdf", false},
		{"upper case", "SCAN.JPG", "image/jpeg", false},
		{"docx", "offer.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", false},
		{"exe", "payload.exe", "", true},
		{"no extension", "README", "", true},
		{"gif", "chart.gif", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			key, ct, err := DocumentKey("invoices", tc.file)
			if tc.wantErr {
				if !errors.Is(err, models.ErrUnsupportedDocument) {
					t.Fatalf("err = %v, want ErrUnsupportedDocument", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DocumentKey: %v", err)
			}
			if ct != tc.wantCT || !strings.HasPrefix(key, "invoices/") {
				t.Errorf("key %q, content type %q", key, ct)
			}
			if !strings.HasSuffix(key, strings.ToLower(tc.file[strings.LastIndex(tc.file, "."):])) {
				t.Errorf("key %q lost extension", key)
			}
		})
	}
}

func TestCleanKeyRejectsTraversal(t *testing.T) {
	for _, k := range []string{"", "../etc/passwd", "invoices/../../x", "a//b"} {
		if _, err := cleanKey(k); err == nil {
			t.Errorf("cleanKey(%q) accepted", k)
		}
	}
	if k, err := cleanKey("invoices/a.pdf"); err != nil || k != "invoices/a.pdf" {
		t.Errorf("cleanKey = %q, %v", k, err)
	}
}

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	body := "%PDF-1.4 fake"
	if err := s.Put(ctx, "invoices/x.pdf", strings.NewReader(body), int64(len(body)), "application/pdf"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	rc, err := s.Open(ctx, "invoices/x.pdf")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if string(got) != body {
		t.Errorf("read back %q", got)
	}

	if err := s.Delete(ctx, "invoices/x.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Open(ctx, "invoices/x.pdf"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Open after delete = %v", err)
	}
	if err := s.Delete(ctx, "invoices/x.pdf"); err != nil {
		t.Errorf("second Delete = %v", err)
	}
}

func TestLocalStoreShortWrite(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(context.Background(), "invoices/y.png", strings.NewReader("abc"), 10, "image/png"); err == nil {
		t.Error("short write accepted")
	}
	if _, err := s.Open(context.Background(), "invoices/y.png"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("partial file left behind: %v", err)
	}
}

func TestNewMinioStoreValidates(t *testing.T) {
	if _, err := NewMinioStore(MinioConfig{Endpoint: "localhost:9000"}); err == nil {
		t.Error("missing credentials accepted")
	}
	s, err := NewMinioStore(MinioConfig{Endpoint: "https://minio.local", AccessKey: "a", SecretKey: "b", Bucket: "docs"})
	if err != nil {
		t.Fatalf("NewMinioStore: %v", err)
	}
	if s.bucket != "docs" {
		t.Errorf("bucket = %q", s.bucket)
	}
}
