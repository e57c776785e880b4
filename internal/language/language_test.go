package language

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"eng":     "en",
		"EN":      "en",
		"fre":     "fr",
		"fra":     "fr",
		"german":  "de",
		"und":     "",
		"":        "",
		"  jpn ":  "ja",
		"klingon": "klingon",
	}
	for input, want := range cases {
		if got := Normalize(input); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSame(t *testing.T) {
	if !Same("eng", "en") {
		t.Fatal("eng and en denote the same language")
	}
	if Same("und", "und") {
		t.Fatal("undefined codes never match")
	}
	if Same("en", "de") {
		t.Fatal("distinct languages must not match")
	}
}

func TestDisplay(t *testing.T) {
	if got := Display("deu"); got != "German" {
		t.Fatalf("Display(deu) = %q", got)
	}
	if got := Display(""); got != "Unknown" {
		t.Fatalf("Display(empty) = %q", got)
	}
}
