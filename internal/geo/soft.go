package geo

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/miqalab/miqa/pkg/miqa"
)

// Entity is one SOFT record: a `^TYPE = ID` header followed by
// `!Type_attr = value` attribute lines. Attribute keys are stored with the
// entity-type prefix stripped; repeated keys accumulate (characteristics
// lines are legitimately multi-valued).
type Entity struct {
	Type  string
	ID    string
	Attrs map[string][]string
}

// Attr returns the first value of an attribute, or "".
func (e *Entity) Attr(key string) string {
	if vals := e.Attrs[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// ParseSOFT reads SOFT-format text into entities. An attribute line before
// any entity header is a malformed response.
func ParseSOFT(r io.Reader) ([]Entity, error) {
	var entities []Entity
	var current *Entity

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		switch line[0] {
		case '^':
			if current != nil {
				entities = append(entities, *current)
			}
			typ, id, ok := splitSOFTLine(line[1:])
			if !ok {
				return nil, fmt.Errorf("%w: bad SOFT entity header %q", miqa.ErrMalformedResponse, line)
			}
			current = &Entity{Type: typ, ID: id, Attrs: make(map[string][]string)}

		case '!':
			if current == nil {
				return nil, fmt.Errorf("%w: SOFT attribute before any entity header", miqa.ErrMalformedResponse)
			}
			key, value, ok := splitSOFTLine(line[1:])
			if !ok {
				// Comment banners like "!Series_..." without " = " show up
				// in full views; skip them.
				continue
			}
			// Headers carry the type uppercased ("^SAMPLE") while attribute
			// lines capitalize it ("!Sample_title"), so strip by length.
			prefix := current.Type + "_"
			if len(key) > len(prefix) && strings.EqualFold(key[:len(prefix)], prefix) {
				key = key[len(prefix):]
			}
			current.Attrs[key] = append(current.Attrs[key], value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading SOFT response: %w", miqa.ErrMalformedResponse, err)
	}

	if current != nil {
		entities = append(entities, *current)
	}
	return entities, nil
}

func splitSOFTLine(s string) (string, string, bool) {
	key, value, found := strings.Cut(strings.TrimSpace(s), " = ")
	if !found {
		return "", "", false
	}
	return key, value, true
}

// sampleFromEntity maps a SAMPLE entity onto a Sample. Characteristics lines
// ("gender: Female", "age: 43") are split into the dedicated columns;
// everything unrecognized lands in Extras.
func sampleFromEntity(e *Entity) *miqa.Sample {
	sample := &miqa.Sample{
		Repository: miqa.RepositoryGEO,
		Accession:  e.ID,
		Extras:     make(map[string]any),
	}

	if acc := e.Attr("geo_accession"); acc != "" {
		sample.Accession = acc
	}
	sample.SeriesAccession = e.Attr("series_id")
	sample.PlatformID = e.Attr("platform_id")
	sample.ExtractionProtocol = e.Attr("extract_protocol_ch1")

	for _, ch := range e.Attrs["characteristics_ch1"] {
		key, value, found := strings.Cut(ch, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "gender", "sex":
			sample.Gender = value
		case "age":
			sample.Age = value
		case "tissue", "cell type", "source tissue":
			sample.Tissue = value
		case "disease", "disease state", "diagnosis":
			sample.Disease = value
		default:
			sample.Extras[key] = value
		}
	}

	for key, vals := range e.Attrs {
		switch key {
		case "geo_accession", "series_id", "platform_id",
			"extract_protocol_ch1", "characteristics_ch1":
			continue
		}
		if len(vals) == 1 {
			sample.Extras[key] = vals[0]
		} else {
			sample.Extras[key] = vals
		}
	}

	return sample
}
