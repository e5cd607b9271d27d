package browserexport

import "testing"

func TestParse(t *testing.T) {
	data := []byte(`{
		"bookmarks": [
			{"title": "Example", "url": "example.com"},
			{"title": "Docs", "url": "https://docs.example.com", "tags": ["ref"]},
			{"title": "no url"},
			{"url": "untitled.example.com"}
		]
	}`)

	records, err := Parse("user-1", data)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("parsed %d records, want 3 (entry without url skipped)", len(records))
	}
	if records[0].URL != "https://example.com" {
		t.Errorf("url = %q, want normalized %q", records[0].URL, "https://example.com")
	}
	if records[2].Title != "https://untitled.example.com" {
		t.Errorf("untitled entry should fall back to url, got %q", records[2].Title)
	}
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	if _, err := Parse("user-1", []byte("{broken")); err == nil {
		t.Error("Parse() should reject invalid json")
	}
}

func TestParseRejectsEmptyExport(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "no bookmarks key", data: `{"other": []}`},
		{name: "empty array", data: `{"bookmarks": []}`},
		{name: "only unusable entries", data: `{"bookmarks": [{"title": "x"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse("user-1", []byte(tt.data)); err == nil {
				t.Error("Parse() should error")
			}
		})
	}
}
