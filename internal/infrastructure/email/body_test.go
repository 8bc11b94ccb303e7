package email

import "testing"

func TestTextToHTML(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "linkifies bare URL",
			text: "see https://example.com/doc for details",
			want: `see <a href="https://example.com/doc">https://example.com/doc</a> for details`,
		},
		{
			name: "newlines become br tags",
			text: "line one\nline two",
			want: "line one<br>line two",
		},
		{
			name: "URL and newline together",
			text: "invoice ready\nhttps://pay.example.com/inv1",
			want: `invoice ready<br><a href="https://pay.example.com/inv1">https://pay.example.com/inv1</a>`,
		},
		{
			name: "plain text untouched",
			text: "hello there",
			want: "hello there",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := textToHTML(tt.text); got != tt.want {
				t.Errorf("textToHTML(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "removes markup",
			html: "<p>hello <strong>world</strong></p>",
			want: "hello world",
		},
		{
			name: "br becomes newline",
			html: "line one<br>line two",
			want: "line one\nline two",
		},
		{
			name: "self-closing br",
			html: "a<br/>b",
			want: "a\nb",
		},
		{
			name: "anchor keeps label only",
			html: `<a href="https://example.com">click here</a>`,
			want: "click here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripTags(tt.html); got != tt.want {
				t.Errorf("stripTags(%q) = %q, want %q", tt.html, got, tt.want)
			}
		})
	}
}

func TestRenderBodies(t *testing.T) {
	t.Run("html body sent as-is with text companion", func(t *testing.T) {
		text, html := renderBodies("", "<p>hi</p>")
		if html != "<p>hi</p>" {
			t.Errorf("expected HTML unchanged, got %q", html)
		}
		if text != "hi" {
			t.Errorf("expected stripped companion, got %q", text)
		}
	})

	t.Run("text body gets html companion", func(t *testing.T) {
		text, html := renderBodies("a\nb", "")
		if text != "a\nb" {
			t.Errorf("expected text unchanged, got %q", text)
		}
		if html != "a<br>b" {
			t.Errorf("expected converted HTML, got %q", html)
		}
	})
}
