// Package report records OCR results of a front-end run.
package report

// Version of the report layout.
const Version = "1"

// Report is the result of one run over a source.
type Report struct {
	Version string `yaml:"version"`
	Input   string `yaml:"input"`
	Profile string `yaml:"profile"`
	Created string `yaml:"created"`
	Pages   []Page `yaml:"pages"`
}

// Page is the outcome for one image or PDF page.
type Page struct {
	ID      int      `yaml:"id"`
	Input   string   `yaml:"input"`
	Status  string   `yaml:"status"`
	Regions []Region `yaml:"regions,omitempty"`
	Timings []Timing `yaml:"timings,omitempty"`
}

// Region is one recognized line
type Region struct {
	Box   Quad    `yaml:"box,flow"`
	Text  string  `yaml:"text"`
	Score float64 `yaml:"score"`
	Angle int     `yaml:"angle,omitempty"`
}

// Quad holds x0,y0,...,x3,y3 clockwise from the top-left corner.
type Quad [8]int

// Timing is one stage duration.
type Timing struct {
	Stage  string  `yaml:"stage"`
	Millis float64 `yaml:"ms"`
}

// Bounds returns the axis-aligned extent of q as min and max corners.
func (q Quad) Bounds() (x0, y0, x1, y1 int) {
	x0, y0, x1, y1 = q[0], q[1], q[0], q[1]
	for i := 2; i < len(q); i += 2 {
		x0, x1 = min(x0, q[i]), max(x1, q[i])
		y0, y1 = min(y0, q[i+1]), max(y1, q[i+1])
	}
	return x0, y0, x1, y1
}

// Texts returns the recognized lines of every page in order.
func (r *Report) Texts() []string {
	var out []string
	for _, p := range r.Pages {
		for _, reg := range p.Regions {
			out = append(out, reg.Text)
		}
	}
	return out
}
