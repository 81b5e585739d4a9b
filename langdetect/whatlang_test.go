package langdetect

import "testing"

func TestDetectEnglish(t *testing.T) {
	d := &WhatlangDetector{}
	code := d.Detect("the quick brown fox jumps over the lazy dog repeatedly in the park")
	if code != "eng" {
		t.Errorf("Detect = %q, want %q", code, "eng")
	}
}

func TestDetectRejectsLowConfidence(t *testing.T) {
	d := &WhatlangDetector{MinConfidence: 1.1}
	code := d.Detect("the quick brown fox jumps over the lazy dog")
	if code != "" {
		t.Errorf("Detect = %q, want empty under an unreachable confidence floor", code)
	}
}
