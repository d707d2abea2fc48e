package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultProfile is used when neither a profile nor model paths are given.
	DefaultProfile = "PaddleOCR"
	// CharProfile restricts recognition to letters and digits.
	CharProfile = "PaddleCharOCR"

	// ManifestName is the backend manifest expected in every model directory.
	ManifestName = "inference.yml"
)

// Profile is a named bundle of detection, recognition, dictionary and
// optional classification assets. A profile without model directories uses
// the built-in backends with default parameters.
type Profile struct {
	Name         string `yaml:"-"`
	Description  string `yaml:"description"`
	DetModelDir  string `yaml:"det"`
	RecModelDir  string `yaml:"rec"`
	CharListFile string `yaml:"dict"`
	ClsModelDir  string `yaml:"cls"`
	Dictionary   string `yaml:"dictionary"`
	NoCls        bool   `yaml:"no_cls"`
}

// Registry maps profile names to profiles.
type Registry struct {
	profiles map[string]Profile
}

type registryFile struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

// DefaultRegistry returns the built-in profiles.
func DefaultRegistry() *Registry {
	return &Registry{profiles: map[string]Profile{
		DefaultProfile: {
			Name:        DefaultProfile,
			Description: "General words (default)",
			Dictionary:  DictGeneral,
		},
		CharProfile: {
			Name:        CharProfile,
			Description: "Only alphabet and digits",
			Dictionary:  DictAlnum,
		},
	}}
}

// LoadRegistry reads a YAML profile registry and merges it over the built-in
// profiles. Relative asset paths are resolved against the file's directory.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	reg := DefaultRegistry()
	base := filepath.Dir(path)
	for name, p := range f.Profiles {
		if name == "" {
			return nil, fmt.Errorf("%s: empty profile name", path)
		}
		p.Name = name
		p.DetModelDir = resolvePath(base, p.DetModelDir)
		p.RecModelDir = resolvePath(base, p.RecModelDir)
		p.CharListFile = resolvePath(base, p.CharListFile)
		p.ClsModelDir = resolvePath(base, p.ClsModelDir)
		reg.profiles[name] = p
	}
	return reg, nil
}

// Lookup returns the profile registered under name.
func (r *Registry) Lookup(name string) (Profile, bool) {
	p, ok := r.profiles[name]
	return p, ok
}

// Profiles returns all profiles sorted by name, for usage listings.
func (r *Registry) Profiles() []Profile {
	out := make([]Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Resolve turns options into a ModelSet, loading manifests and the
// dictionary from disk. A profile name takes precedence over explicit paths.
func Resolve(opts Options) (*ModelSet, error) {
	reg := DefaultRegistry()
	if opts.ProfilesFile != "" {
		var err error
		reg, err = LoadRegistry(opts.ProfilesFile)
		if err != nil {
			return nil, fmt.Errorf("load profiles: %w", err)
		}
	}

	if opts.Profile != "" {
		p, ok := reg.Lookup(opts.Profile)
		if !ok {
			return nil, fmt.Errorf("unknown profile %q", opts.Profile)
		}
		return p.resolve()
	}

	if opts.DetModelDir == "" && opts.RecModelDir == "" {
		p, _ := reg.Lookup(DefaultProfile)
		return p.resolve()
	}

	p := Profile{
		Name:         "custom",
		DetModelDir:  opts.DetModelDir,
		RecModelDir:  opts.RecModelDir,
		CharListFile: opts.CharListFile,
		ClsModelDir:  opts.ClsModelDir,
		NoCls:        opts.ClsModelDir == "",
	}
	if p.DetModelDir == "" || p.RecModelDir == "" {
		return nil, fmt.Errorf("both detection and recognition model directories are required")
	}
	return p.resolve()
}

func (p Profile) resolve() (*ModelSet, error) {
	set := &ModelSet{Profile: p.Name}

	if p.DetModelDir != "" {
		if err := loadManifest(p.DetModelDir, &set.Det); err != nil {
			return nil, fmt.Errorf("detection model: %w", err)
		}
	} else {
		set.Det.Padding = 2
	}
	set.Det.applyDefaults()

	if p.RecModelDir != "" {
		if err := loadManifest(p.RecModelDir, &set.Rec); err != nil {
			return nil, fmt.Errorf("recognition model: %w", err)
		}
	}
	if set.Rec.Dictionary == "" {
		set.Rec.Dictionary = p.Dictionary
	}
	set.Rec.applyDefaults()

	switch {
	case p.ClsModelDir != "":
		cls := &ClsManifest{}
		if err := loadManifest(p.ClsModelDir, cls); err != nil {
			return nil, fmt.Errorf("classification model: %w", err)
		}
		cls.applyDefaults()
		set.Cls = cls
	case !p.NoCls:
		cls := &ClsManifest{}
		cls.applyDefaults()
		set.Cls = cls
	}

	var err error
	if p.CharListFile != "" {
		set.Dictionary, err = LoadDictionary(p.CharListFile)
	} else {
		set.Dictionary, err = BuiltinDictionary(set.Rec.Dictionary)
	}
	if err != nil {
		return nil, err
	}
	return set, nil
}

func loadManifest(dir string, v interface{}) error {
	fi, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Join(dir, ManifestName), err)
	}
	return nil
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
