package media

// Filter selects items by tag. An item matches when it carries every
// included tag and none of the excluded ones.
type Filter struct {
	Include []string `json:"include"`
	Exclude []string `json:"exclude"`
}

// Active reports whether the filter constrains anything.
func (f Filter) Active() bool {
	return len(f.Include) > 0 || len(f.Exclude) > 0
}

// Matches reports whether it passes the filter.
func (f Filter) Matches(it Item) bool {
	for _, tag := range f.Include {
		if !it.HasTag(tag) {
			return false
		}
	}
	for _, tag := range f.Exclude {
		if it.HasTag(tag) {
			return false
		}
	}
	return true
}

// Apply returns the items that pass the filter, in collection order.
func (f Filter) Apply(items []Item) []Item {
	if !f.Active() {
		return items
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if f.Matches(it) {
			out = append(out, it)
		}
	}
	return out
}
