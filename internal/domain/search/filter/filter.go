package filter

import "encoding/json"

// BoolQuery is a must/should/must_not filter over document metadata.
// Each group maps a metadata field name to the value it is matched against.
//
// A nil group is left out of the wire form; a non-nil group is sent even when
// empty, so {"must":{}} reaches the server as given.
type BoolQuery struct {
	Must    map[string]any `json:"must,omitempty"`
	Should  map[string]any `json:"should,omitempty"`
	MustNot map[string]any `json:"must_not,omitempty"`
}

// Clone returns a copy with independent group maps.
// Values themselves are shared. Nil and empty groups stay distinct.
func (b *BoolQuery) Clone() *BoolQuery {
	if b == nil {
		return nil
	}
	return &BoolQuery{
		Must:    cloneGroup(b.Must),
		Should:  cloneGroup(b.Should),
		MustNot: cloneGroup(b.MustNot),
	}
}

// MarshalJSON omits nil groups only.
func (b BoolQuery) MarshalJSON() ([]byte, error) {
	wire := struct {
		Must    *map[string]any `json:"must,omitempty"`
		Should  *map[string]any `json:"should,omitempty"`
		MustNot *map[string]any `json:"must_not,omitempty"`
	}{
		Must:    groupRef(b.Must),
		Should:  groupRef(b.Should),
		MustNot: groupRef(b.MustNot),
	}
	return json.Marshal(wire) //nolint:wrapcheck // plain struct encoding
}

func groupRef(g map[string]any) *map[string]any {
	if g == nil {
		return nil
	}
	return &g
}

func cloneGroup(g map[string]any) map[string]any {
	if g == nil {
		return nil
	}
	out := make(map[string]any, len(g))
	for k, v := range g {
		out[k] = v
	}
	return out
}
