package geo

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/miqalab/miqa/pkg/miqa"
)

// parseListing extracts .gz supplementary files from an FTP mirror directory
// listing. The listing is plain HTML with one anchor per file.
func parseListing(accession, dirURL string, body []byte) ([]miqa.SuppFile, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: directory listing for %s: %w", miqa.ErrMalformedResponse, accession, err)
	}

	var files []miqa.SuppFile
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := attrVal(n, "href"); strings.HasSuffix(href, ".gz") {
				files = append(files, miqa.SuppFile{
					SampleAccession: accession,
					Filename:        href,
					URL:             dirURL + href,
					Channel:         channelFromFilename(href),
				})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return files, nil
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// channelFromFilename derives the scanner channel from Illumina IDAT naming
// (..._Grn.idat.gz / ..._Red.idat.gz).
func channelFromFilename(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "_grn."):
		return "Grn"
	case strings.Contains(lower, "_red."):
		return "Red"
	default:
		return ""
	}
}
