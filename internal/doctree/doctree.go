package doctree

// Document is one crawled page after header extraction.
type Document struct {
	SourceURL    *string // First non-empty line after the "# Source URL" marker
	PageTitle    *string // First level-1 heading after the URL section
	PageSubtitle *string // Second level-1 heading or a short level-2 pseudo-subtitle
	Body         string  // Text handed to the primary splitter
	SubtitleLine int     // 1-based body line of a level-2 pseudo-subtitle, 0 if none
}

// RawBlock is a heading-delimited span of the body.
type RawBlock struct {
	HeadingText  string // Empty for the intro block
	HeadingLevel int    // 2 or 3, 0 for the intro block
	Content      string // Block text, heading line excluded
	Subtitle     bool   // Opened by a pseudo-subtitle heading
}

// IsIntro reports whether the block has no section heading of its own.
func (b RawBlock) IsIntro() bool {
	return b.HeadingLevel == 0
}

// Chunk is a sized text segment with its section context.
type Chunk struct {
	Text           string
	SectionHeading string
	Index          int // Position in final emission order
	Count          int // Total chunks of the document
	IsBoilerplate  bool
	WordCount      int
}

// ChunkMetadata is the metadata attached to every emitted record.
type ChunkMetadata struct {
	SourceURL      *string `json:"source_url"`
	PageTitle      *string `json:"page_title"`
	PageSubtitle   *string `json:"page_subtitle"`
	SectionHeading string  `json:"section_heading"`
	ChunkIndex     int     `json:"chunk_index"`
	ChunkCount     int     `json:"chunk_count"`
	Depth          int     `json:"depth"`
	FilePath       string  `json:"file_path"`
	Subdomain      string  `json:"subdomain"`
	WordCount      int     `json:"word_count"`
	IsBoilerplate  bool    `json:"is_boilerplate"`
}

// Record is the unit handed to emitters.
type Record struct {
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
}

// IndexEntry summarizes one emitted document.
type IndexEntry struct {
	FilePath   string  `json:"file_path"`
	ChunkCount int     `json:"chunk_count"`
	SourceURL  *string `json:"source_url"`
}
