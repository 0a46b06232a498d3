package blob

import "testing"

func TestResolveKey(t *testing.T) {
	tests := []struct {
		name     string
		basePath string
		rawKey   string
		want     string
	}{
		{"no base path", "", "a/b", "a/b"},
		{"base path join", "base", "a/b", "base/a/b"},
		{"leading and trailing slashes", "base", "/a//b/", "base/a/b"},
		{"backslashes converted", "", `dir\sub\file.png`, "dir/sub/file.png"},
		{"runs of slashes collapsed", "", "a////b///c", "a/b/c"},
		{"mixed separators", "assets", `\images//2024\\photo.jpg`, "assets/images/2024/photo.jpg"},
		{"base path with trailing slash", "base/", "k", "base/k"},
		{"empty key", "base", "", "base"},
		{"empty everything", "", "", ""},
		{"slash only", "", "/", ""},
		{"already canonical", "tenant-a", "docs/report.pdf", "tenant-a/docs/report.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveKey(tt.basePath, tt.rawKey)
			if got != tt.want {
				t.Fatalf("ResolveKey(%q, %q) = %q, want %q", tt.basePath, tt.rawKey, got, tt.want)
			}
		})
	}
}

func TestResolveKeyAlwaysCanonical(t *testing.T) {
	// Whatever the input, the output must use single forward slashes
	// with no leading or trailing slash.
	inputs := []string{`\\a\\b\\`, "///x///y///", `mix\of/both//styles\`, "plain"}
	for _, in := range inputs {
		got := ResolveKey("base//path", in)
		if got == "" {
			t.Fatalf("ResolveKey(base//path, %q) unexpectedly empty", in)
		}
		for i := 0; i+1 < len(got); i++ {
			if got[i] == '/' && got[i+1] == '/' {
				t.Fatalf("ResolveKey(base//path, %q) = %q contains duplicate slashes", in, got)
			}
		}
		if got[0] == '/' || got[len(got)-1] == '/' {
			t.Fatalf("ResolveKey(base//path, %q) = %q has leading or trailing slash", in, got)
		}
		for i := 0; i < len(got); i++ {
			if got[i] == '\\' {
				t.Fatalf("ResolveKey(base//path, %q) = %q contains backslash", in, got)
			}
		}
	}
}
