package lang

import (
	"testing"

	"bitbucket.org/creachadair/stringset"

	"github.com/ucto-go/ucto/config"
	"github.com/ucto-go/ucto/token"
)

type stubDetector struct {
	codes map[string]string
}

func (d *stubDetector) Detect(text string) string {
	return d.codes[text]
}

func settingWithEOS(markers ...string) *config.Setting {
	return &config.Setting{EOSMarkers: stringset.New(markers...)}
}

func echoCascade(setting *config.Setting, text string) []token.Token {
	return []token.Token{token.New(token.TypeWord, text)}
}

func TestResolveUsesHint(t *testing.T) {
	eng := settingWithEOS(".", "!", "?")
	d := &Dispatcher{
		Settings: map[string]*config.Setting{"eng": eng},
		Default:  eng,
	}
	toks := d.TokenizeOneLine("hello", "eng", echoCascade)
	if len(toks) != 1 || toks[0].Language != "eng" {
		t.Errorf("toks = %+v", toks)
	}
}

func TestResolveFallsBackToDefault(t *testing.T) {
	eng := settingWithEOS(".", "!", "?")
	d := &Dispatcher{
		Settings: map[string]*config.Setting{"default": eng},
		Default:  eng,
	}
	toks := d.TokenizeOneLine("hello", "fra", echoCascade)
	if len(toks) != 1 || toks[0].Language != token.LanguageDefault {
		t.Errorf("toks = %+v", toks)
	}
}

func TestUndWithNoSetting(t *testing.T) {
	eng := settingWithEOS(".", "!", "?")
	d := &Dispatcher{
		Settings:   map[string]*config.Setting{"default": eng},
		Default:    eng,
		UndAllowed: true,
	}
	toks := d.TokenizeOneLine("xyzzy", "klingon", echoCascade)
	if len(toks) != 1 || toks[0].Type != token.TypeUnanalyzed || toks[0].Language != token.LanguageUndetermined {
		t.Errorf("toks = %+v", toks)
	}
	if !toks[0].Role.Has(token.BeginSentence) || !toks[0].Role.Has(token.EndSentence) {
		t.Errorf("role = %v, want BEGIN_SENT|END_SENT", toks[0].Role)
	}
}

func TestEnableLanguageDetectionRefusesWithoutAdapter(t *testing.T) {
	d := &Dispatcher{}
	if err := d.EnableLanguageDetection(); err != ErrNoDetector {
		t.Errorf("err = %v, want ErrNoDetector", err)
	}
	if d.Detect {
		t.Error("Detect should remain false after a refused enable")
	}
}

func TestEnableLanguageDetectionWithAdapter(t *testing.T) {
	d := &Dispatcher{Detector: &stubDetector{}}
	if err := d.EnableLanguageDetection(); err != nil {
		t.Fatalf("EnableLanguageDetection: %v", err)
	}
	if !d.Detect {
		t.Error("Detect should be true after a successful enable")
	}
}

func TestSplitByLanguageCoalescesRuns(t *testing.T) {
	eng := settingWithEOS(".", "!", "?")
	fra := settingWithEOS(".", "!", "?")
	d := &Dispatcher{
		Settings:   map[string]*config.Setting{"default": eng, "eng": eng, "fra": fra},
		Default:    eng,
		UndAllowed: true,
		Detect:     true,
		Detector: &stubDetector{codes: map[string]string{
			"hello. ":    "eng",
			"world. ":    "eng",
			"bonjour. ":  "fra",
		}},
	}
	toks := d.TokenizeOneLine("hello. world. bonjour. ", "", echoCascade)
	if len(toks) != 2 {
		t.Fatalf("toks = %+v, want 2 runs", toks)
	}
	if toks[0].Language != "eng" || toks[0].Text != "hello. world. " {
		t.Errorf("toks[0] = %+v", toks[0])
	}
	if toks[1].Language != "fra" || toks[1].Text != "bonjour. " {
		t.Errorf("toks[1] = %+v", toks[1])
	}
}
