package tokens

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestMissingKeyFallsBackAndWarnsOnce(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	ts := Load(map[string]string{}, zap.New(core))

	for i := 0; i < 3; i++ {
		v, err := ts.Pt("section-spacing-after-pt", 6)
		if err != nil {
			t.Fatalf("missing token must never fail: %v", err)
		}
		if v != 6 {
			t.Fatalf("expected default 6, got %v", v)
		}
	}

	if got := logs.Len(); got != 1 {
		t.Fatalf("expected exactly one warning for missing key, got %d", got)
	}
}

func TestTypedGetters(t *testing.T) {
	values := map[string]string{
		"section-spacing-after-pt": "6",
		"bullet-indent-cm":         "0.33",
		"entry-keep-next":          "true",
		"color-accent":             "#1f3864",
		"bullet-glyph":             "•",
	}
	ts := Load(values, zaptest.NewLogger(t))

	if v, err := ts.Pt("section-spacing-after-pt", 0); err != nil || v != 6 {
		t.Errorf("Pt = %v, %v; want 6, nil", v, err)
	}
	if v, err := ts.Cm("bullet-indent-cm", 0); err != nil || v != 0.33 {
		t.Errorf("Cm = %v, %v; want 0.33, nil", v, err)
	}
	if v, err := ts.Bool("entry-keep-next", false); err != nil || !v {
		t.Errorf("Bool = %v, %v; want true, nil", v, err)
	}
	if v, err := ts.Color("color-accent", "000000"); err != nil || v != "1F3864" {
		t.Errorf("Color = %q, %v; want 1F3864, nil", v, err)
	}
	if v := ts.String("bullet-glyph", "-"); v != "•" {
		t.Errorf("String = %q; want bullet glyph", v)
	}
}

func TestMalformedValueIsFatal(t *testing.T) {
	tests := []struct {
		name string
		key  string
		call func(ts *Set) error
	}{
		{
			name: "non-numeric point value",
			key:  "section-spacing-after-pt",
			call: func(ts *Set) error { _, err := ts.Pt("section-spacing-after-pt", 6); return err },
		},
		{
			name: "non-numeric centimeter value",
			key:  "bullet-indent-cm",
			call: func(ts *Set) error { _, err := ts.Cm("bullet-indent-cm", 0.33); return err },
		},
		{
			name: "non-boolean value",
			key:  "entry-keep-next",
			call: func(ts *Set) error { _, err := ts.Bool("entry-keep-next", true); return err },
		},
		{
			name: "short color value",
			key:  "color-accent",
			call: func(ts *Set) error { _, err := ts.Color("color-accent", "000000"); return err },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := Load(map[string]string{
				"section-spacing-after-pt": "six",
				"bullet-indent-cm":         "a third",
				"entry-keep-next":          "yep",
				"color-accent":             "abc",
			}, zaptest.NewLogger(t))

			err := tt.call(ts)
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if perr.Key != tt.key {
				t.Errorf("ParseError names key %q, want %q", perr.Key, tt.key)
			}
		})
	}
}

func TestUnitConversions(t *testing.T) {
	tests := []struct {
		name string
		got  int
		want int
	}{
		{"pt to twips", PtToTwips(6), 120},
		{"fractional pt to twips rounds", PtToTwips(0.75), 15},
		{"cm to twips", CmToTwips(1), 567},
		{"fractional cm to twips rounds", CmToTwips(0.33), 187},
		{"pt to half points", PtToHalfPoints(10.5), 21},
		{"pt to eighths", PtToEighths(0.75), 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %d, want %d", tt.got, tt.want)
			}
		})
	}
}
