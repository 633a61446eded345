// Package config loads the showcase manifest: the index cards and, for each
// page, its shaders and uniform descriptors.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goshaderdemos/frame"
	"github.com/richinsley/goshaderdemos/uniforms"
	"gopkg.in/yaml.v3"
)

// Title is a card heading rendered as "Name / Accent".
type Title struct {
	Name   string `yaml:"name"`
	Accent string `yaml:"accent"`
}

func (t Title) String() string {
	if t.Accent == "" {
		return t.Name
	}
	return t.Name + " / " + t.Accent
}

// ShaderFiles are paths relative to the manifest.
type ShaderFiles struct {
	Vertex   string `yaml:"vertex"`
	Fragment string `yaml:"fragment"`
}

// Manifest is the decoded showcase file.
type Manifest struct {
	Title       Title      `yaml:"title"`
	Description string     `yaml:"description"`
	Pages       []PageSpec `yaml:"pages"`

	// Dir is the directory relative paths are resolved against.
	Dir string `yaml:"-"`
}

// PageSpec is one page as written in the manifest.
type PageSpec struct {
	Slug        string        `yaml:"slug"`
	Title       Title         `yaml:"title"`
	Description string        `yaml:"description"`
	Backend     string        `yaml:"backend"`
	DPR         float32       `yaml:"dpr"`
	Shader      ShaderFiles   `yaml:"shader"`
	Camera      *CameraSpec   `yaml:"camera"`
	Controls    *OrbitSpec    `yaml:"controls"`
	Uniforms    []UniformSpec `yaml:"uniforms"`
}

type CameraSpec struct {
	Position [3]float32 `yaml:"position"`
}

type OrbitSpec struct {
	MinDistance float32 `yaml:"minDistance"`
	MaxDistance float32 `yaml:"maxDistance"`
}

type SourceSpec struct {
	Default string `yaml:"default"`
	Mobile  string `yaml:"mobile"`
}

// UniformSpec holds the fields of every descriptor kind; which ones apply
// depends on Kind.
type UniformSpec struct {
	Kind    string `yaml:"kind"`
	Uniform string `yaml:"uniform"`

	// texture
	Src   SourceSpec `yaml:"src"`
	FlipY bool       `yaml:"flipY"`

	// texture and volume
	WrapS     string `yaml:"wrapS"`
	WrapT     string `yaml:"wrapT"`
	WrapR     string `yaml:"wrapR"`
	MinFilter string `yaml:"minFilter"`
	MagFilter string `yaml:"magFilter"`

	// scalar
	Default float32 `yaml:"default"`
	Min     float32 `yaml:"min"`
	Max     float32 `yaml:"max"`
	Step    float32 `yaml:"step"`

	// volume
	Shader     ShaderFiles `yaml:"shader"`
	Size       []int       `yaml:"size"`
	DepthScale float32     `yaml:"depthScale"`
}

// Load reads and decodes a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return Parse(data, filepath.Dir(path))
}

// Parse decodes manifest data. Unknown keys are rejected.
func Parse(data []byte, dir string) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	m := &Manifest{}
	if err := dec.Decode(m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	seen := make(map[string]bool, len(m.Pages))
	for i, p := range m.Pages {
		if p.Slug == "" {
			return nil, fmt.Errorf("page #%d has no slug", i)
		}
		if seen[p.Slug] {
			return nil, fmt.Errorf("duplicate page slug %q", p.Slug)
		}
		seen[p.Slug] = true
	}
	m.Dir = dir
	return m, nil
}

// ErrNoPage is returned for an unknown slug.
var ErrNoPage = errors.New("no such page")

// Find returns the page with the given slug.
func (m *Manifest) Find(slug string) (*PageSpec, error) {
	slug = strings.Trim(slug, "/")
	for i := range m.Pages {
		if m.Pages[i].Slug == slug {
			return &m.Pages[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoPage, slug)
}

// Page is a page ready to mount.
type Page struct {
	Slug        string
	Title       Title
	Backend     frame.Backend
	DPR         float32
	Shader      uniforms.ShaderPair
	ShaderFiles ShaderFiles
	Descriptors []uniforms.Descriptor

	// Camera is nil unless the page configures one.
	Camera      *mgl32.Vec3
	MinDistance float32
	MaxDistance float32
}

// Page reads the shaders of the named page and builds its descriptors.
func (m *Manifest) Page(slug string) (*Page, error) {
	entry, err := m.Find(slug)
	if err != nil {
		return nil, err
	}
	backend, err := frame.ParseBackend(entry.Backend)
	if err != nil {
		return nil, fmt.Errorf("page %q: %w", entry.Slug, err)
	}
	files := ShaderFiles{Vertex: m.path(entry.Shader.Vertex), Fragment: m.path(entry.Shader.Fragment)}
	shader, err := ReadShaders(files)
	if err != nil {
		return nil, fmt.Errorf("page %q: %w", entry.Slug, err)
	}

	p := &Page{
		Slug:        entry.Slug,
		Title:       entry.Title,
		Backend:     backend,
		DPR:         entry.DPR,
		Shader:      shader,
		ShaderFiles: files,
	}
	if p.DPR <= 0 {
		p.DPR = 1
	}
	if entry.Camera != nil {
		pos := mgl32.Vec3(entry.Camera.Position)
		p.Camera = &pos
	}
	if entry.Controls != nil {
		p.MinDistance = entry.Controls.MinDistance
		p.MaxDistance = entry.Controls.MaxDistance
	}

	for i, u := range entry.Uniforms {
		d, err := m.descriptor(u, files)
		if err != nil {
			return nil, &uniforms.ConfigError{Uniform: u.Uniform, Index: i, Err: err}
		}
		p.Descriptors = append(p.Descriptors, d)
	}
	if err := uniforms.Validate(p.Descriptors); err != nil {
		return nil, fmt.Errorf("page %q: %w", entry.Slug, err)
	}
	return p, nil
}

// ReadShaders loads a vertex and fragment source pair.
func ReadShaders(files ShaderFiles) (uniforms.ShaderPair, error) {
	if files.Vertex == "" || files.Fragment == "" {
		return uniforms.ShaderPair{}, errors.New("shader needs a vertex and fragment file")
	}
	vs, err := os.ReadFile(files.Vertex)
	if err != nil {
		return uniforms.ShaderPair{}, fmt.Errorf("reading vertex shader: %w", err)
	}
	fs, err := os.ReadFile(files.Fragment)
	if err != nil {
		return uniforms.ShaderPair{}, fmt.Errorf("reading fragment shader: %w", err)
	}
	return uniforms.ShaderPair{Vertex: string(vs), Fragment: string(fs)}, nil
}

func (m *Manifest) path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}

func (m *Manifest) descriptor(u UniformSpec, page ShaderFiles) (uniforms.Descriptor, error) {
	switch uniforms.Kind(u.Kind) {
	case uniforms.KindTexture:
		t := &uniforms.Texture{
			Name:  u.Uniform,
			Src:   uniforms.Source{Default: u.Src.Default, Mobile: u.Src.Mobile},
			FlipY: u.FlipY,
		}
		s, err := parseSampling(u)
		if err != nil {
			return nil, err
		}
		t.WrapS, t.WrapT, t.MinFilter, t.MagFilter = s.WrapS, s.WrapT, s.MinFilter, s.MagFilter
		return t, nil

	case uniforms.KindScalar:
		return &uniforms.Scalar{Name: u.Uniform, Default: u.Default, Min: u.Min, Max: u.Max, Step: u.Step}, nil

	case uniforms.KindVolume:
		if len(u.Size) != 3 {
			return nil, fmt.Errorf("%w: size needs 3 dimensions, got %d", uniforms.ErrInvalidSize, len(u.Size))
		}
		// the baking pass reuses the page's vertex shader unless it names one
		files := ShaderFiles{Vertex: m.path(u.Shader.Vertex), Fragment: m.path(u.Shader.Fragment)}
		if files.Vertex == "" {
			files.Vertex = page.Vertex
		}
		shader, err := ReadShaders(files)
		if err != nil {
			return nil, err
		}
		s, err := parseSampling(u)
		if err != nil {
			return nil, err
		}
		return &uniforms.VolumeBake{
			Name:       u.Uniform,
			Shader:     shader,
			Size:       [3]int{u.Size[0], u.Size[1], u.Size[2]},
			WrapS:      s.WrapS,
			WrapT:      s.WrapT,
			WrapR:      s.WrapR,
			MinFilter:  s.MinFilter,
			MagFilter:  s.MagFilter,
			DepthScale: u.DepthScale,
		}, nil
	}
	return nil, fmt.Errorf("unknown uniform kind %q", u.Kind)
}

func parseSampling(u UniformSpec) (s uniforms.Sampling, err error) {
	if s.WrapS, err = uniforms.ParseWrap(u.WrapS); err != nil {
		return s, err
	}
	if s.WrapT, err = uniforms.ParseWrap(u.WrapT); err != nil {
		return s, err
	}
	if s.WrapR, err = uniforms.ParseWrap(u.WrapR); err != nil {
		return s, err
	}
	if s.MinFilter, err = uniforms.ParseFilter(u.MinFilter); err != nil {
		return s, err
	}
	if s.MagFilter, err = uniforms.ParseFilter(u.MagFilter); err != nil {
		return s, err
	}
	return s, nil
}

// Card is a page entry of the showcase index.
type Card struct {
	Title       Title
	Description string
	Slug        string
}

// Cards lists the pages in manifest order.
func (m *Manifest) Cards() []Card {
	cards := make([]Card, 0, len(m.Pages))
	for _, p := range m.Pages {
		cards = append(cards, Card{Title: p.Title, Description: p.Description, Slug: p.Slug})
	}
	return cards
}
