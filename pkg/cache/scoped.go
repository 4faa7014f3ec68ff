package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation, for
// example one namespace per API tenant or per project.
//
//	projectKeyer := NewScopedKeyer(NewDefaultKeyer(), "project:knights:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// AnalysisKey generates a prefixed analysis key.
func (k *ScopedKeyer) AnalysisKey(imageHash string, opts AnalysisKeyOpts) string {
	return k.prefix + k.inner.AnalysisKey(imageHash, opts)
}

// SpriteKey generates a prefixed sprite key.
func (k *ScopedKeyer) SpriteKey(styleHash string, opts SpriteKeyOpts) string {
	return k.prefix + k.inner.SpriteKey(styleHash, opts)
}

// ReportKey generates a prefixed report key.
func (k *ScopedKeyer) ReportKey(spriteHash string, opts ReportKeyOpts) string {
	return k.prefix + k.inner.ReportKey(spriteHash, opts)
}
