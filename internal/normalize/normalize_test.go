package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercases and strips punctuation",
			input: "iPhone 15 Pro Max (256GB) - Unlocked!",
			want:  "iphone 15 pro max 256gb unlocked",
		},
		{
			name:  "collapses whitespace",
			input: "  Sony   WH-1000XM5  ",
			want:  "sony wh 1000xm5",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "punctuation only",
			input: "***---***",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Title(tt.input))
		})
	}
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		want   []string
	}{
		{
			name:   "drops short tokens and stopwords",
			fields: []string{"New iPhone 15 for Japan", "Apple"},
			want:   []string{"iphone", "apple"},
		},
		{
			name:   "deduplicates across fields",
			fields: []string{"Canon EOS R5", "Canon camera body"},
			want:   []string{"canon", "eos", "camera", "body"},
		},
		{
			name:   "caps at ten keywords",
			fields: []string{"alpha bravo charlie delta echo foxtrot golf hotel india juliet kilo lima"},
			want:   []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel", "india", "juliet"},
		},
		{
			name:   "empty fields",
			fields: []string{"", ""},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Keywords(tt.fields...))
		})
	}
}

func TestFingerprint(t *testing.T) {
	// Stable across calls.
	a := Fingerprint("iPhone 15 Pro", "Apple", "phones")
	b := Fingerprint("iPhone 15 Pro", "Apple", "phones")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	// Normalization folds case and punctuation.
	c := Fingerprint("IPHONE 15 PRO!", "apple", "Phones")
	assert.Equal(t, a, c)

	// Field boundaries matter.
	d := Fingerprint("iPhone 15", "Pro Apple", "phones")
	assert.NotEqual(t, a, d)
}

func TestKeywordOverlap(t *testing.T) {
	assert.Equal(t, 2, KeywordOverlap(
		[]string{"iphone", "apple", "256gb"},
		[]string{"apple", "iphone", "case"},
	))
	assert.Equal(t, 0, KeywordOverlap(nil, []string{"apple"}))
	assert.Equal(t, 0, KeywordOverlap([]string{"apple"}, nil))
}

func TestJaccard(t *testing.T) {
	assert.InDelta(t, 1.0, Jaccard("iPhone 15 Pro Max", "iphone 15 pro max"), 0.0001)
	assert.Equal(t, 0.0, Jaccard("abcdef", "uvwxyz"))
	assert.Equal(t, 0.0, Jaccard("", ""))

	// Similar titles land between the extremes.
	sim := Jaccard("iPhone 15 Pro Max 256GB", "iPhone 15 Pro Max 512GB")
	assert.Greater(t, sim, 0.5)
	assert.Less(t, sim, 1.0)
}
