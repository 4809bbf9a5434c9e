package options

// Reserved option keys.
const (
	KeyTopTags     = "top_tags"
	KeyScoringMode = "smode"
)

// ScoringMode names a server-side ranking strategy.
type ScoringMode string

// Known scoring modes. Any other value is forwarded as is.
const (
	ScoringDot ScoringMode = "dot"
)

// Options controls aggregation and scoring of a search.
//
// TopTags > 0 requests a tag aggregation with that many buckets, any other value
// requests none. Extra is forwarded verbatim under the request "options" field.
type Options struct {
	TopTags     int
	ScoringMode ScoringMode
	Extra       map[string]any
}

// WantsTopTags reports whether a tag aggregation is requested.
func (o *Options) WantsTopTags() bool {
	return o != nil && o.TopTags > 0
}

// Passthrough returns the key/value pairs for the wire "options" field.
// Extra is copied first, then named fields are applied on top of it.
// top_tags never appears in the result. Returns nil when nothing is left.
func (o *Options) Passthrough() map[string]any {
	if o == nil {
		return nil
	}
	out := make(map[string]any, len(o.Extra)+1)
	for k, v := range o.Extra {
		if k == KeyTopTags {
			continue
		}
		out[k] = v
	}
	if o.ScoringMode != "" {
		out[KeyScoringMode] = string(o.ScoringMode)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
