package receipt

// Align is the horizontal anchor of a text instruction: x is the left edge,
// the center, or the right edge of the string.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Font styles, gofpdf notation.
const (
	StyleNormal = ""
	StyleBold   = "B"
)

// Sink receives drawing instructions in millimetres, y growing downwards.
type Sink interface {
	SetFont(style string, size float64)
	Text(x, y float64, s string, align Align)
	Line(x1, y1, x2, y2 float64)
}

type OpKind string

const (
	OpFont OpKind = "font"
	OpText OpKind = "text"
	OpLine OpKind = "line"
)

// Op is one recorded instruction.
type Op struct {
	Kind  OpKind
	X, Y  float64
	X2    float64
	Y2    float64
	Text  string
	Align Align
	Style string
	Size  float64
}

// Recorder is a Sink that keeps every instruction, for previews and tests.
type Recorder struct {
	Ops []Op
}

func (r *Recorder) SetFont(style string, size float64) {
	r.Ops = append(r.Ops, Op{Kind: OpFont, Style: style, Size: size})
}

func (r *Recorder) Text(x, y float64, s string, align Align) {
	r.Ops = append(r.Ops, Op{Kind: OpText, X: x, Y: y, Text: s, Align: align})
}

func (r *Recorder) Line(x1, y1, x2, y2 float64) {
	r.Ops = append(r.Ops, Op{Kind: OpLine, X: x1, Y: y1, X2: x2, Y2: y2})
}

// Texts returns the text of every text instruction in order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.Ops {
		if op.Kind == OpText {
			out = append(out, op.Text)
		}
	}
	return out
}
