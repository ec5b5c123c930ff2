package object

import "testing"

func TestJoinURL(t *testing.T) {
	tests := []struct {
		base string
		key  string
		want string
	}{
		{base: "http://localhost:8080/blobs", key: "1-ab_report.pdf", want: "http://localhost:8080/blobs/1-ab_report.pdf"},
		{base: "http://localhost:8080/blobs/", key: "/a/b.pdf", want: "http://localhost:8080/blobs/a/b.pdf"},
		{base: "https://cdn.example.com", key: "x y.pdf", want: "https://cdn.example.com/x%20y.pdf"},
	}
	for _, tt := range tests {
		if got := JoinURL(tt.base, tt.key); got != tt.want {
			t.Fatalf("JoinURL(%q, %q) = %q, want %q", tt.base, tt.key, got, tt.want)
		}
	}
}
