package domain

import "slices"

// Default public categories.
const (
	CategoryNormal     = "normal"
	CategoryFullNormal = "fullnormal"
	CategoryFragment   = "fragment"
)

// LinkSet maps a public category to its ordered subscription URLs.
type LinkSet map[string][]string

// DefaultLinkSet returns the empty default categories.
func DefaultLinkSet() LinkSet {
	return LinkSet{
		CategoryNormal:     {},
		CategoryFullNormal: {},
		CategoryFragment:   {},
	}
}

// Clone copies the set including the URL slices.
func (s LinkSet) Clone() LinkSet {
	out := make(LinkSet, len(s))
	for k, v := range s {
		out[k] = slices.Clone(v)
		if out[k] == nil {
			out[k] = []string{}
		}
	}
	return out
}

// CustomSub is a user-made list of literal configuration lines.
type CustomSub struct {
	Configs []string `json:"configs"`
}

// CustomSubs is the persisted custom subscription document.
type CustomSubs map[string]*CustomSub
