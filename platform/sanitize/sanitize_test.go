package sanitize

import "testing"

func TestStripHTML_RemovesScriptTags(t *testing.T) {
	in := `Bonjour <script>alert("x")</script>, nous cherchons un lieu`
	got := StripHTML(in)
	want := `Bonjour alert("x"), nous cherchons un lieu`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestStripHTML_CatchesEncodedTags(t *testing.T) {
	in := "&lt;img src=x onerror=alert(1)&gt;"
	got := StripHTML(in)
	if got != "" {
		t.Fatalf("expected encoded tag to be stripped, got %q", got)
	}
}

func TestStripHTML_Idempotent(t *testing.T) {
	inputs := []string{
		"plain text message",
		"<b>bold</b> request for a <i>seminar</i>",
		"&lt;script&gt;alert('x')&lt;/script&gt; venue inquiry",
		"  padded  ",
		"",
	}
	for _, in := range inputs {
		once := StripHTML(in)
		twice := StripHTML(once)
		if once != twice {
			t.Fatalf("sanitize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestTextPtr(t *testing.T) {
	if TextPtr(nil) != nil {
		t.Fatal("expected nil for nil input")
	}
	s := "<p>hello</p>"
	out := TextPtr(&s)
	if out == nil || *out != "hello" {
		t.Fatalf("expected \"hello\", got %v", out)
	}
}
