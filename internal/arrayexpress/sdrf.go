package arrayexpress

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/miqalab/miqa/pkg/miqa"
)

// parseSDRF reads a tab-separated SDRF table into samples and their array
// data files. One SDRF row describes one hybridization; two-channel designs
// repeat the source name, so samples are deduplicated on it. fileBase is
// prepended to every Array Data File name to form the download URL.
func parseSDRF(studyAccession, fileBase string, body []byte) ([]miqa.Sample, []miqa.SuppFile, error) {
	reader := csv.NewReader(bytes.NewReader(body))
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: SDRF for %s has no header: %w", miqa.ErrMalformedResponse, studyAccession, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["source name"]; !ok {
		return nil, nil, fmt.Errorf("%w: SDRF for %s lacks a Source Name column", miqa.ErrMalformedResponse, studyAccession)
	}

	var samples []miqa.Sample
	var files []miqa.SuppFile
	byAccession := make(map[string]int)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: SDRF row for %s: %w", miqa.ErrMalformedResponse, studyAccession, err)
		}

		field := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		sourceName := field("source name")
		if sourceName == "" {
			continue
		}

		// SDRF has no repository-wide sample accession; the study accession
		// plus source name is unique within ArrayExpress.
		accession := studyAccession + ":" + sourceName

		if _, seen := byAccession[accession]; !seen {
			sample := miqa.Sample{
				Repository:      miqa.RepositoryArrayExpress,
				Accession:       accession,
				SeriesAccession: studyAccession,
				Gender:          field("characteristics[sex]"),
				Age:             field("characteristics[age]"),
				Tissue:          field("characteristics[organism part]"),
				Disease:         field("characteristics[disease]"),
				Extras:          map[string]any{"source_name": sourceName},
			}
			if organism := field("characteristics[organism]"); organism != "" {
				sample.Extras["organism"] = organism
			}
			byAccession[accession] = len(samples)
			samples = append(samples, sample)
		}

		filename := field("array data file")
		if filename == "" {
			continue
		}
		files = append(files, miqa.SuppFile{
			SampleAccession: accession,
			Filename:        filename,
			URL:             fileBase + filename,
			Channel:         channelFromFilename(filename),
		})
	}

	return samples, files, nil
}

// channelFromFilename derives the scanner channel from Illumina IDAT naming.
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
