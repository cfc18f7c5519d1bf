package geo

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/miqalab/miqa/pkg/miqa"
)

type eSearchResult struct {
	XMLName xml.Name `xml:"eSearchResult"`
	Count   int      `xml:"Count"`
	IDs     []string `xml:"IdList>Id"`
}

type searchPage struct {
	Count int
	IDs   []string
}

func parseSearchResult(body []byte) (*searchPage, error) {
	var result eSearchResult
	if err := xml.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: esearch response: %w", miqa.ErrMalformedResponse, err)
	}
	return &searchPage{Count: result.Count, IDs: result.IDs}, nil
}

type eSummaryResult struct {
	XMLName xml.Name `xml:"eSummaryResult"`
	DocSums []docSum `xml:"DocSum"`
}

type docSum struct {
	ID    string        `xml:"Id"`
	Items []summaryItem `xml:"Item"`
}

// summaryItem is the recursive Item element of an esummary document. The
// Type attribute decides whether Value (String, Integer) or the nested Items
// (List, Structure) carry the payload.
type summaryItem struct {
	Name  string        `xml:"Name,attr"`
	Type  string        `xml:"Type,attr"`
	Value string        `xml:",chardata"`
	Items []summaryItem `xml:"Item"`
}

// fieldValue walks a summaryItem into a plain Go value.
func fieldValue(item summaryItem) any {
	switch item.Type {
	case "List":
		values := make([]any, len(item.Items))
		for i, child := range item.Items {
			values[i] = fieldValue(child)
		}
		return values
	case "Structure":
		values := make(map[string]any, len(item.Items))
		for _, child := range item.Items {
			values[child.Name] = fieldValue(child)
		}
		return values
	case "Integer":
		n, err := strconv.Atoi(strings.TrimSpace(item.Value))
		if err != nil {
			return nil
		}
		return n
	default: // String and anything unrecognized
		return strings.TrimSpace(item.Value)
	}
}

// parseStudySummary maps the first DocSum of an esummary response onto a Study.
func parseStudySummary(body []byte) (*miqa.Study, error) {
	var result eSummaryResult
	if err := xml.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: esummary response: %w", miqa.ErrMalformedResponse, err)
	}
	if len(result.DocSums) == 0 {
		return nil, fmt.Errorf("%w: esummary response has no DocSum", miqa.ErrMalformedResponse)
	}

	doc := result.DocSums[0]
	study := &miqa.Study{
		Repository: miqa.RepositoryGEO,
		Extras:     make(map[string]any),
	}

	for _, item := range doc.Items {
		value := fieldValue(item)

		switch item.Name {
		case "Accession":
			study.Accession, _ = value.(string)
		case "title":
			study.Title, _ = value.(string)
		case "summary":
			study.Summary, _ = value.(string)
		case "GPL":
			study.PlatformID = platformAccession(item.Value)
		case "taxon":
			study.Organism, _ = value.(string)
		case "n_samples":
			if n, ok := value.(int); ok {
				study.SampleCount = n
			}
		case "Samples":
			study.Samples = sampleRefs(value)
		default:
			// Scalar leftovers (suppFile, gdsType, PDAT, ...) are kept as
			// extras; empty strings and nested values are dropped.
			switch v := value.(type) {
			case string:
				if v != "" {
					study.Extras[item.Name] = v
				}
			case int:
				study.Extras[item.Name] = v
			}
		}
	}

	if study.Accession == "" {
		return nil, fmt.Errorf("%w: DocSum %s has no Accession", miqa.ErrMalformedResponse, doc.ID)
	}
	return study, nil
}

// platformAccession turns the bare esummary GPL value ("13534" or
// "13534;21145") back into a platform accession.
func platformAccession(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	first := strings.SplitN(raw, ";", 2)[0]
	return "GPL" + strings.TrimSpace(first)
}

func sampleRefs(value any) []miqa.SampleRef {
	list, ok := value.([]any)
	if !ok {
		return nil
	}

	refs := make([]miqa.SampleRef, 0, len(list))
	for _, entry := range list {
		fields, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		ref := miqa.SampleRef{}
		ref.Accession, _ = fields["Accession"].(string)
		ref.Title, _ = fields["Title"].(string)
		if ref.Accession != "" {
			refs = append(refs, ref)
		}
	}
	return refs
}
