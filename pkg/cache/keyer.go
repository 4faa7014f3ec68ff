package cache

// AnalysisKeyOpts are the analysis options that affect the result.
type AnalysisKeyOpts struct {
	MaxColors int    `json:"max_colors"`
	Merge     string `json:"merge,omitempty"`
}

// SpriteKeyOpts identify one generated sprite for a style.
type SpriteKeyOpts struct {
	Class    string `json:"class"`
	Item     string `json:"item,omitempty"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Seed     uint32 `json:"seed"`
	Textures bool   `json:"textures"`
	Format   string `json:"format"`
}

// ReportKeyOpts are the validator settings that affect a report.
type ReportKeyOpts struct {
	MaxColors int    `json:"max_colors"`
	StyleHash string `json:"style_hash"`
	Textured  bool   `json:"textured,omitempty"`
	Item      bool   `json:"item,omitempty"`
}

// Keyer builds cache keys for each pipeline stage.
type Keyer interface {
	AnalysisKey(imageHash string, opts AnalysisKeyOpts) string
	SpriteKey(styleHash string, opts SpriteKeyOpts) string
	ReportKey(spriteHash string, opts ReportKeyOpts) string
}

// DefaultKeyer hashes the inputs of each stage into a prefixed key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// AnalysisKey returns "analysis:<hash>".
func (DefaultKeyer) AnalysisKey(imageHash string, opts AnalysisKeyOpts) string {
	return hashKey("analysis", imageHash, opts)
}

// SpriteKey returns "sprite:<hash>".
func (DefaultKeyer) SpriteKey(styleHash string, opts SpriteKeyOpts) string {
	return hashKey("sprite", styleHash, opts)
}

// ReportKey returns "report:<hash>".
func (DefaultKeyer) ReportKey(spriteHash string, opts ReportKeyOpts) string {
	return hashKey("report", spriteHash, opts)
}

var _ Keyer = DefaultKeyer{}
