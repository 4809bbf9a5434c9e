package options

import "testing"

func TestWantsTopTags(t *testing.T) {
	tests := []struct {
		name string
		o    *Options
		want bool
	}{
		{"nil", nil, false},
		{"absent", &Options{}, false},
		{"zero", &Options{TopTags: 0}, false},
		{"negative", &Options{TopTags: -5}, false},
		{"positive", &Options{TopTags: 10}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.o.WantsTopTags(); got != tc.want {
				t.Errorf("WantsTopTags() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPassthrough_Empty(t *testing.T) {
	if got := (*Options)(nil).Passthrough(); got != nil {
		t.Errorf("nil options: got %v", got)
	}
	if got := (&Options{TopTags: 10}).Passthrough(); got != nil {
		t.Errorf("top_tags only: got %v, want nil", got)
	}
}

func TestPassthrough_ScoringMode(t *testing.T) {
	got := (&Options{ScoringMode: ScoringDot}).Passthrough()
	if got[KeyScoringMode] != "dot" {
		t.Errorf("smode = %v, want dot", got[KeyScoringMode])
	}
}

func TestPassthrough_ExtraTopTagsDropped(t *testing.T) {
	o := &Options{Extra: map[string]any{"top_tags": 5, "lang": "en"}}
	got := o.Passthrough()
	if _, ok := got[KeyTopTags]; ok {
		t.Error("top_tags leaked into options")
	}
	if got["lang"] != "en" {
		t.Errorf("lang = %v, want en", got["lang"])
	}
}

func TestPassthrough_NamedFieldWinsOverExtra(t *testing.T) {
	o := &Options{
		ScoringMode: ScoringDot,
		Extra:       map[string]any{"smode": "cosine"},
	}
	if got := o.Passthrough()[KeyScoringMode]; got != "dot" {
		t.Errorf("smode = %v, want dot", got)
	}
}

func TestPassthrough_DoesNotMutateExtra(t *testing.T) {
	extra := map[string]any{"top_tags": 3}
	o := &Options{ScoringMode: ScoringDot, Extra: extra}
	_ = o.Passthrough()
	if len(extra) != 1 || extra["top_tags"] != 3 {
		t.Errorf("extra mutated: %v", extra)
	}
}
