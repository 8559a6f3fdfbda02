package site

// Contents is the working payload of a page. Its shape changes between
// stages and only the owning handler interprets it; the pipeline moves it
// around without looking inside.
type Contents interface {
	Kind() string
}

// Writable is Contents that can be written to an output file as-is.
type Writable interface {
	Contents
	Bytes() []byte
}

// Text is UTF-8 source text.
type Text string

func (Text) Kind() string    { return "text" }
func (t Text) Bytes() []byte { return []byte(t) }

// Bytes is binary content.
type Bytes []byte

func (Bytes) Kind() string    { return "bytes" }
func (b Bytes) Bytes() []byte { return b }

// Markup is escaped output produced by a render variant.
type Markup string

func (Markup) Kind() string    { return "markup" }
func (m Markup) Bytes() []byte { return []byte(m) }
