package chunker

import (
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/dgallion1/crawlchunk/internal/doctree"
)

// Source is the path-derived context of a document.
type Source struct {
	FilePath string // Slash-separated, relative to the run root
	Depth    int
}

// SourceFromPath derives depth from the last depth_<N> segment of rel.
func SourceFromPath(rel string) Source {
	if rel == "" {
		return Source{}
	}
	rel = path.Clean(strings.ReplaceAll(rel, "\\", "/"))
	src := Source{FilePath: rel}
	for _, seg := range strings.Split(rel, "/") {
		n, ok := strings.CutPrefix(seg, "depth_")
		if !ok {
			continue
		}
		if d, err := strconv.Atoi(n); err == nil && d >= 0 {
			src.Depth = d
		}
	}
	return src
}

// Assemble builds one record per numbered chunk.
func (c *Chunker) Assemble(doc doctree.Document, chunks []doctree.Chunk, src Source) []doctree.Record {
	subdomain := Subdomain(doc.SourceURL, c.cfg.StripWWW)
	records := make([]doctree.Record, 0, len(chunks))
	for _, ch := range chunks {
		records = append(records, doctree.Record{
			Text: ch.Text,
			Metadata: doctree.ChunkMetadata{
				SourceURL:      doc.SourceURL,
				PageTitle:      doc.PageTitle,
				PageSubtitle:   doc.PageSubtitle,
				SectionHeading: ch.SectionHeading,
				ChunkIndex:     ch.Index,
				ChunkCount:     ch.Count,
				Depth:          src.Depth,
				FilePath:       src.FilePath,
				Subdomain:      subdomain,
				WordCount:      ch.WordCount,
				IsBoilerplate:  ch.IsBoilerplate,
			},
		})
	}
	return records
}

// Subdomain returns the host of rawURL, or "" when it is absent or unparseable.
func Subdomain(rawURL *string, stripWWW bool) string {
	if rawURL == nil {
		return ""
	}
	u, err := url.Parse(strings.TrimSpace(*rawURL))
	if err != nil {
		return ""
	}
	// Host keeps an explicit port, userinfo is not part of it.
	host := u.Host
	if stripWWW {
		host = strings.TrimPrefix(host, "www.")
	}
	return host
}
