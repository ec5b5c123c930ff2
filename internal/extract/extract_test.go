package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"summary-backend/internal/shared/storage/object/local"
)

func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(body.String())); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestFromBytesDocx(t *testing.T) {
	data := buildDocx(t, "Quarterly report", "Revenue grew")

	text, err := FromBytes(context.Background(), data, mimeDOCX, "report.docx")
	if err != nil {
		t.Fatalf("extract docx: %v", err)
	}
	if text != "Quarterly report\nRevenue grew" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestFromBytesZipDocxNormalizes(t *testing.T) {
	data := buildDocx(t, "hello")

	text, err := FromBytes(context.Background(), data, "application/zip", "upload.bin")
	if err != nil {
		t.Fatalf("expected docx to extract from zip mime, got error: %v", err)
	}
	if text != "hello" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestFromBytesRealZipRejected(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("notes.txt")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	_, err = FromBytes(context.Background(), buf.Bytes(), "application/zip", "notes.zip")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestFromBytesPlainText(t *testing.T) {
	text, err := FromBytes(context.Background(), []byte("line one\nline two"), "text/markdown; charset=utf-8", "notes.md")
	if err != nil {
		t.Fatalf("extract text: %v", err)
	}
	if text != "line one\nline two" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestFromBytesFallsBackToExtension(t *testing.T) {
	text, err := FromBytes(context.Background(), []byte("plain"), "application/octet-stream", "notes.txt")
	if err != nil {
		t.Fatalf("extract by extension: %v", err)
	}
	if text != "plain" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestFromBytesUnsupported(t *testing.T) {
	_, err := FromBytes(context.Background(), []byte{0x89, 'P', 'N', 'G'}, "image/png", "scan.png")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestFromObjectReadsStore(t *testing.T) {
	store := local.New(t.TempDir(), "http://localhost:8080/blobs")
	ctx := context.Background()
	if _, err := store.Put(ctx, "1-abc_notes.txt", "text/plain", strings.NewReader("stored text")); err != nil {
		t.Fatalf("put: %v", err)
	}

	text, err := FromObject(ctx, store, "1-abc_notes.txt", "text/plain", "notes.txt")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if text != "stored text" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestFromObjectMissingKey(t *testing.T) {
	store := local.New(t.TempDir(), "http://localhost:8080/blobs")

	_, err := FromObject(context.Background(), store, "missing.txt", "text/plain", "missing.txt")
	if err == nil {
		t.Fatal("expected error for missing object")
	}
}
