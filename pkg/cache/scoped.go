package cache

// ScopedKeyer prefixes every key of an inner Keyer. The API server scopes
// keys per deployment so several servers can share one Redis.
//
//	keyer := cache.NewScopedKeyer(nil, "graphlayout:staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// LayoutKey returns the prefixed layout key.
func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}

// CheckKey returns the prefixed check key.
func (k *ScopedKeyer) CheckKey(graphHash, check string) string {
	return k.prefix + k.inner.CheckKey(graphHash, check)
}
