package knotty

import (
	"sort"
	"strings"

	"github.com/knottyio/knotty/internal/names"
)

// LabelValueUnknown is used as a label value when one is expected but not
// provided, typically due to user error.
const LabelValueUnknown = "unknown"

// Label is a single key/value pair attached to a metric identity.
type Label struct {
	Key   string
	Value string
}

// Identity is the canonical key of a metric: a name plus a label set sorted
// by key. Two identities are equal iff their names and canonical label sets
// are equal. An Identity is immutable once constructed.
type Identity struct {
	name   string
	labels []Label
	key    string
}

// NewIdentity canonicalizes a name and flat key/value label pairs into an
// Identity. The name and every label key must match
// [a-zA-Z_][a-zA-Z0-9_]*; violations fail with an InvalidNameError. An odd
// trailing label key gets the value "unknown". Duplicate keys keep the last
// value.
func NewIdentity(name string, labelPairs ...string) (Identity, error) {
	if !names.Valid(name) {
		return Identity{}, &InvalidNameError{Name: name}
	}
	if len(labelPairs)%2 != 0 {
		labelPairs = append(labelPairs, LabelValueUnknown)
	}
	set := make(map[string]string, len(labelPairs)/2)
	for i := 0; i < len(labelPairs); i += 2 {
		if !names.Valid(labelPairs[i]) {
			return Identity{}, &InvalidNameError{Name: labelPairs[i]}
		}
		set[labelPairs[i]] = labelPairs[i+1]
	}
	labels := make([]Label, 0, len(set))
	for k, v := range set {
		labels = append(labels, Label{Key: k, Value: v})
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i].Key < labels[j].Key })
	return Identity{name: name, labels: labels, key: canonicalKey(name, labels)}, nil
}

// MustIdentity is like NewIdentity but panics on error. It simplifies
// registration of statically named metrics at program start.
func MustIdentity(name string, labelPairs ...string) Identity {
	id, err := NewIdentity(name, labelPairs...)
	if err != nil {
		panic(err)
	}
	return id
}

func canonicalKey(name string, labels []Label) string {
	if len(labels) == 0 {
		return name
	}
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte('{')
	for i, l := range labels {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(l.Key)
		sb.WriteString(`="`)
		sb.WriteString(names.EscapeLabelValue(l.Value))
		sb.WriteString(`"`)
	}
	sb.WriteByte('}')
	return sb.String()
}

// Name returns the metric name.
func (id Identity) Name() string { return id.name }

// Labels returns a copy of the canonical label set, sorted by key.
func (id Identity) Labels() []Label {
	out := make([]Label, len(id.labels))
	copy(out, id.labels)
	return out
}

// LabelPairs returns the canonical label set flattened to key/value pairs,
// sorted by key.
func (id Identity) LabelPairs() []string {
	out := make([]string, 0, 2*len(id.labels))
	for _, l := range id.labels {
		out = append(out, l.Key, l.Value)
	}
	return out
}

// String returns the canonical form, e.g. `name{a="1",b="2"}`. It doubles as
// the exposition sample key and as a deterministic sort key for renderers.
func (id Identity) String() string { return id.key }

// Equal reports whether two identities share a name and canonical label set.
func (id Identity) Equal(other Identity) bool { return id.key == other.key }

// With returns a new Identity with the given label pairs merged in. Existing
// keys are not overwritten, so metric-local labels win over merged ones.
func (id Identity) With(labelPairs ...string) (Identity, error) {
	if len(labelPairs) == 0 {
		return id, nil
	}
	merged := make([]string, 0, len(labelPairs)+2*len(id.labels))
	merged = append(merged, labelPairs...)
	merged = append(merged, id.LabelPairs()...)
	return NewIdentity(id.name, merged...)
}
