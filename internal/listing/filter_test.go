package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	return NewRegistry(Options{QnetImage: "https://cdn.example.com/qnet.png"})
}

func TestTranslateScale(t *testing.T) {
	h := newTestRegistry().Must(Outside)

	tests := []struct {
		name    string
		raw     string
		wantMin float64
		wantMax *float64
	}{
		{name: "lower bound only", raw: "100", wantMin: 100},
		{name: "inclusive range", raw: "10,50", wantMin: 10, wantMax: ptr(50)},
		{name: "invalid lower bound", raw: "abc", wantMin: 0},
		{name: "invalid upper bound", raw: "5,x", wantMin: 5, wantMax: ptr(0)},
		{name: "empty upper bound", raw: "10,", wantMin: 10},
		{name: "blank upper bound", raw: "10, ", wantMin: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Translate(h, map[string]string{"scale": tt.raw})
			require.Len(t, f.Predicates, 1)

			p := f.Predicates[0]
			assert.Equal(t, "scale", p.Field)
			assert.Equal(t, MatchRange, p.Match)
			assert.Equal(t, tt.wantMin, p.Min)
			assert.Equal(t, tt.wantMax, p.Max)
		})
	}
}

func TestTranslateLinkareerIsDisjunction(t *testing.T) {
	h := newTestRegistry().Must(Competition)

	f := Translate(h, map[string]string{
		"interests": "design, marketing",
		"region":    "Seoul",
		"page":      "2",
		"count":     "true",
		"bogus":     "drop me",
	})

	assert.Equal(t, LogicOr, f.Logic)
	assert.Empty(t, f.Groups)
	require.Len(t, f.Predicates, 3)
	for _, p := range f.Predicates {
		assert.Equal(t, MatchContains, p.Match)
		assert.NotEqual(t, "bogus", p.Field)
	}
	assert.Equal(t, "interests", f.Predicates[0].Field)
	assert.Equal(t, "design", f.Predicates[0].Value)
	assert.Equal(t, "marketing", f.Predicates[1].Value)
	assert.Equal(t, "region", f.Predicates[2].Field)
}

func TestTranslateLanguageClassify(t *testing.T) {
	h := newTestRegistry().Must(Language)

	tests := []struct {
		name      string
		params    map[string]string
		wantLogic Logic
		wantLen   int
	}{
		{
			name:      "classify with two predicates must all hold",
			params:    map[string]string{"classify": "speaking", "test": "toeic"},
			wantLogic: LogicAnd,
			wantLen:   2,
		},
		{
			name:      "classify with three predicates needs any",
			params:    map[string]string{"classify": "speaking", "test": "toeic,teps"},
			wantLogic: LogicOr,
			wantLen:   3,
		},
		{
			name:      "classify alone",
			params:    map[string]string{"classify": "writing"},
			wantLogic: LogicAnd,
			wantLen:   1,
		},
		{
			name:      "no classify",
			params:    map[string]string{"test": "toeic,jlpt"},
			wantLogic: LogicOr,
			wantLen:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Translate(h, tt.params)
			assert.Equal(t, tt.wantLogic, f.Logic)
			require.Len(t, f.Predicates, tt.wantLen)
			for _, p := range f.Predicates {
				assert.Equal(t, MatchEquals, p.Match)
			}
		})
	}
}

func TestTranslateLanguageNormalizesTestCodes(t *testing.T) {
	h := newTestRegistry().Must(Language)

	f := Translate(h, map[string]string{"test": " toeicSpeaking,gTelp ", "classify": "Speaking"})
	require.Len(t, f.Predicates, 3)
	assert.Equal(t, Predicate{Field: "classify", Match: MatchEquals, Value: "Speaking"}, f.Predicates[0])
	assert.Equal(t, "toeicspeaking", f.Predicates[1].Value)
	assert.Equal(t, "gtelp", f.Predicates[2].Value)
}

func TestTranslateQnetGroupsValuesPerParameter(t *testing.T) {
	h := newTestRegistry().Must(Qnet)

	f := Translate(h, map[string]string{
		"mainCategory": "IT,Design",
		"subCategory":  "Network",
		"title":        "engineer",
	})

	assert.Equal(t, LogicAnd, f.Logic)
	require.Len(t, f.Groups, 1)
	assert.Equal(t, LogicOr, f.Groups[0].Logic)
	require.Len(t, f.Groups[0].Predicates, 2)
	assert.Equal(t, "main_categories.keyword", f.Groups[0].Predicates[0].Field)
	assert.Equal(t, MatchEquals, f.Groups[0].Predicates[0].Match)

	require.Len(t, f.Predicates, 2)
	assert.Equal(t, Predicate{Field: "sub_categories.keyword", Match: MatchEquals, Value: "Network"}, f.Predicates[0])
	assert.Equal(t, Predicate{Field: "qnets.title", Match: MatchContains, Value: "engineer"}, f.Predicates[1])
	assert.Equal(t, 4, f.Len())
}

func TestTranslateEmptyParams(t *testing.T) {
	for _, c := range All() {
		h := newTestRegistry().Must(c)
		f := Translate(h, map[string]string{"page": "3", "path": string(c), "title": " , "})
		assert.True(t, f.Empty(), c)
	}
}

func TestParsePage(t *testing.T) {
	assert.Equal(t, Page{Number: 1, Skip: 0, Limit: 12}, ParsePage(""))
	assert.Equal(t, Page{Number: 1, Skip: 0, Limit: 12}, ParsePage("zero"))
	assert.Equal(t, Page{Number: 1, Skip: 0, Limit: 12}, ParsePage("-4"))
	assert.Equal(t, Page{Number: 3, Skip: 24, Limit: 12}, ParsePage("3"))
}

func ptr(v float64) *float64 { return &v }
