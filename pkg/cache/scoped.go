package cache

// ScopedKeyer wraps a Keyer with a prefix, so that several tools or users
// can share one redis instance without reading each other's entries.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "team:aero:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means the
// default scheme.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// StageKey prefixes the inner stage key.
func (k *ScopedKeyer) StageKey(stage, inputHash string) string {
	return k.prefix + k.inner.StageKey(stage, inputHash)
}

// ProcessKey prefixes the inner process key.
func (k *ScopedKeyer) ProcessKey(mpgHash string, opts ProcessKeyOpts) string {
	return k.prefix + k.inner.ProcessKey(mpgHash, opts)
}
