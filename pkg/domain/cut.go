package domain

// CutMetadata describes the requested slice of a station's continuous timeline.
// It is resolved once per request and treated as read-only afterwards.
type CutMetadata struct {
	// Station is the radiocut station id (e.g. "nacional870").
	Station string `json:"station"`

	// BaseURL is the archive host serving the station's manifests.
	BaseURL string `json:"base_url"`

	// StartSeconds is the absolute offset into the station timeline.
	StartSeconds float64 `json:"start_seconds"`

	// DurationSeconds is the length of the cut.
	DurationSeconds float64 `json:"duration_seconds"`
}

// End returns the exclusive end of the requested interval.
func (m CutMetadata) End() float64 {
	return m.StartSeconds + m.DurationSeconds
}

// Chunk is one fixed-size audio segment listed in a manifest page.
type Chunk struct {
	Start    float64 `json:"start"`
	Length   float64 `json:"length"`
	Filename string  `json:"filename"`
	// BaseURL is already resolved: chunk-level value, else the page default.
	BaseURL string `json:"base_url"`
}

// End returns Start + Length.
func (c Chunk) End() float64 {
	return c.Start + c.Length
}

// URL is the download location of the chunk payload.
func (c Chunk) URL() string {
	return c.BaseURL + "/" + c.Filename
}

// ManifestPage is the parsed content of one time-folder manifest.
type ManifestPage struct {
	Folder  int
	BaseURL string
	Chunks  []Chunk
}

// ChunkWindow is the sub-sequence of chunks covering a cut. Last is exclusive.
type ChunkWindow struct {
	First int
	Last  int

	// TrimOffset is how many seconds of the first chunk precede the requested start.
	TrimOffset float64

	Chunks []Chunk
}

// Len returns the number of chunks in the window.
func (w ChunkWindow) Len() int {
	return w.Last - w.First
}
