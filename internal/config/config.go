package config

// Options selects the models a handle is created from: either a profile name
// or explicit asset paths.
type Options struct {
	Profile      string
	DetModelDir  string
	RecModelDir  string
	CharListFile string
	ClsModelDir  string // optional
	ProfilesFile string // optional YAML registry merged over the built-in profiles
	LogLevel     string
}

// DetManifest configures the detection backend.
type DetManifest struct {
	Backend      string `yaml:"backend"`
	BinaryThresh int    `yaml:"binary_thresh"` // gray level below which a pixel is ink
	Invert       bool   `yaml:"invert"`        // light text on dark background
	MergeGap     int    `yaml:"merge_gap"`     // horizontal gap bridged between glyphs
	MinArea      int    `yaml:"min_area"`
	Padding      int    `yaml:"padding"`
	RowTolerance int    `yaml:"row_tolerance"` // max top offset for boxes on the same line
}

// RecManifest configures the recognition backend.
type RecManifest struct {
	Backend      string   `yaml:"backend"`
	BinaryThresh int      `yaml:"binary_thresh"`
	SpaceGap     int      `yaml:"space_gap"`  // template: blank columns that make a space
	Dictionary   string   `yaml:"dictionary"` // built-in dictionary when no dict file is given
	Languages    []string `yaml:"languages"`  // tesseract
	PageSegMode  int      `yaml:"psm"`        // tesseract
}

// ClsManifest configures the orientation classifier.
type ClsManifest struct {
	Backend   string  `yaml:"backend"`
	ClsThresh float64 `yaml:"cls_thresh"`
}

// ModelSet is a fully resolved configuration: everything a handle loads.
type ModelSet struct {
	Profile    string
	Det        DetManifest
	Rec        RecManifest
	Cls        *ClsManifest // nil: no classifier loaded
	Dictionary []string
}

func (m *DetManifest) applyDefaults() {
	if m.Backend == "" {
		m.Backend = "contrast"
	}
	if m.BinaryThresh <= 0 {
		m.BinaryThresh = 128
	}
	if m.MergeGap <= 0 {
		m.MergeGap = 12
	}
	if m.MinArea <= 0 {
		m.MinArea = 20
	}
	if m.Padding < 0 {
		m.Padding = 0
	}
	if m.RowTolerance <= 0 {
		m.RowTolerance = 10
	}
}

func (m *RecManifest) applyDefaults() {
	if m.Backend == "" {
		m.Backend = "template"
	}
	if m.BinaryThresh <= 0 {
		m.BinaryThresh = 128
	}
	if m.SpaceGap <= 0 {
		m.SpaceGap = 8
	}
	if m.Dictionary == "" {
		m.Dictionary = DictGeneral
	}
	if len(m.Languages) == 0 {
		m.Languages = []string{"eng"}
	}
	if m.PageSegMode <= 0 {
		m.PageSegMode = 7
	}
}

func (m *ClsManifest) applyDefaults() {
	if m.Backend == "" {
		m.Backend = "flip"
	}
	if m.ClsThresh <= 0 {
		m.ClsThresh = 0.9
	}
}
