package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/miqalab/miqa/internal/logging"
	"github.com/miqalab/miqa/pkg/miqa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const summaryXML = `<?xml version="1.0"?>
<eSummaryResult>
<DocSum>
	<Id>200100825</Id>
	<Item Name="Accession" Type="String">GSE100825</Item>
	<Item Name="GDS" Type="String"></Item>
	<Item Name="title" Type="String">Genome-wide methylation profiling of blood</Item>
	<Item Name="summary" Type="String">450K array data from whole blood.</Item>
	<Item Name="GPL" Type="String">13534</Item>
	<Item Name="taxon" Type="String">Homo sapiens</Item>
	<Item Name="suppFile" Type="String">IDAT</Item>
	<Item Name="n_samples" Type="Integer">2</Item>
	<Item Name="Samples" Type="List">
		<Item Name="Sample" Type="Structure">
			<Item Name="Accession" Type="String">GSM2696938</Item>
			<Item Name="Title" Type="String">donor 12</Item>
		</Item>
		<Item Name="Sample" Type="Structure">
			<Item Name="Accession" Type="String">GSM2696939</Item>
			<Item Name="Title" Type="String">donor 13</Item>
		</Item>
	</Item>
</DocSum>
</eSummaryResult>`

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(logging.NewNullLogger(),
		WithBaseURLs(srv.URL, srv.URL+"/acc.cgi", srv.URL),
		WithPageSize(3),
	)
}

func TestSearchStudies_Paging(t *testing.T) {
	ids := []string{"1", "2", "3", "4", "5"}

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/esearch.fcgi", r.URL.Path)
		require.Equal(t, "gds", r.URL.Query().Get("db"))
		assert.Contains(t, r.URL.Query().Get("term"), "GPL13534[accn]")
		assert.Contains(t, r.URL.Query().Get("term"), "idat[suppFile]")

		retStart, _ := strconv.Atoi(r.URL.Query().Get("retstart"))
		retMax, _ := strconv.Atoi(r.URL.Query().Get("retmax"))
		end := retStart + retMax
		if end > len(ids) {
			end = len(ids)
		}

		fmt.Fprintf(w, "<eSearchResult><Count>%d</Count><IdList>", len(ids))
		for _, id := range ids[retStart:end] {
			fmt.Fprintf(w, "<Id>%s</Id>", id)
		}
		fmt.Fprint(w, "</IdList></eSearchResult>")
	}))

	got, err := client.SearchStudies(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, ids, got)
}

func TestSearchStudies_LimitTruncates(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<eSearchResult><Count>100</Count><IdList><Id>1</Id><Id>2</Id></IdList></eSearchResult>")
	}))

	got, err := client.SearchStudies(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, got)
}

func TestSearchStudies_EmptyResultIsSuccess(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<eSearchResult><Count>0</Count><IdList></IdList></eSearchResult>")
	}))

	got, err := client.SearchStudies(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchStudies_MalformedXML(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<eSearchResult><Count>")
	}))

	_, err := client.SearchStudies(context.Background(), 0)
	assert.ErrorIs(t, err, miqa.ErrMalformedResponse)
}

func TestStudySummary(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/esummary.fcgi", r.URL.Path)
		require.Equal(t, "200100825", r.URL.Query().Get("id"))
		fmt.Fprint(w, summaryXML)
	}))

	study, err := client.StudySummary(context.Background(), "200100825")
	require.NoError(t, err)

	assert.Equal(t, miqa.RepositoryGEO, study.Repository)
	assert.Equal(t, "GSE100825", study.Accession)
	assert.Equal(t, "Genome-wide methylation profiling of blood", study.Title)
	assert.Equal(t, "450K array data from whole blood.", study.Summary)
	assert.Equal(t, "GPL13534", study.PlatformID)
	assert.Equal(t, "Homo sapiens", study.Organism)
	assert.Equal(t, 2, study.SampleCount)
	require.Len(t, study.Samples, 2)
	assert.Equal(t, "GSM2696938", study.Samples[0].Accession)
	assert.Equal(t, "donor 12", study.Samples[0].Title)
	assert.Equal(t, "IDAT", study.Extras["suppFile"])
	// Empty scalar fields stay out of extras.
	assert.NotContains(t, study.Extras, "GDS")
}

func TestStudySummary_NoDocSum(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<eSummaryResult></eSummaryResult>")
	}))

	_, err := client.StudySummary(context.Background(), "1")
	assert.ErrorIs(t, err, miqa.ErrMalformedResponse)
}

func TestSample_SOFTLookup(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/acc.cgi", r.URL.Path)
		require.Equal(t, "GSM2696938", r.URL.Query().Get("acc"))
		require.Equal(t, "self", r.URL.Query().Get("targ"))
		require.Equal(t, "brief", r.URL.Query().Get("view"))
		require.Equal(t, "text", r.URL.Query().Get("form"))
		fmt.Fprint(w, sampleSOFT)
	}))

	sample, err := client.Sample(context.Background(), "GSM2696938")
	require.NoError(t, err)
	assert.Equal(t, "GSM2696938", sample.Accession)
	assert.Equal(t, "Female", sample.Gender)
}

func TestSampleFiles(t *testing.T) {
	var gotPath string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `<html><body><pre>
<a href="GSM2696938_200134080018_R01C01_Grn.idat.gz">GSM2696938_200134080018_R01C01_Grn.idat.gz</a> 01-Jan-2020 8.1M
<a href="GSM2696938_200134080018_R01C01_Red.idat.gz">GSM2696938_200134080018_R01C01_Red.idat.gz</a> 01-Jan-2020 8.1M
<a href="readme.txt">readme.txt</a>
</pre></body></html>`)
	}))

	files, err := client.SampleFiles(context.Background(), "GSM2696938")
	require.NoError(t, err)

	// Directory sharding drops the last three digits of the accession.
	assert.Equal(t, "/samples/GSM2696nnn/GSM2696938/suppl/", gotPath)

	require.Len(t, files, 2)
	assert.Equal(t, "GSM2696938_200134080018_R01C01_Grn.idat.gz", files[0].Filename)
	assert.Equal(t, "Grn", files[0].Channel)
	assert.Equal(t, "Red", files[1].Channel)
	assert.Equal(t, "GSM2696938", files[0].SampleAccession)
	assert.Contains(t, files[0].URL, "/samples/GSM2696nnn/GSM2696938/suppl/GSM2696938_200134080018_R01C01_Grn.idat.gz")
}

func TestSampleFiles_AccessionTooShort(t *testing.T) {
	client := NewClient(logging.NewNullLogger())
	_, err := client.SampleFiles(context.Background(), "GSM")
	assert.ErrorIs(t, err, miqa.ErrMalformedResponse)
}

func TestGet_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "<eSearchResult><Count>0</Count></eSearchResult>")
	}))

	_, err := client.SearchStudies(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGet_PermanentStatusNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.SearchStudies(context.Background(), 0)
	require.ErrorIs(t, err, miqa.ErrFetchFailed)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewClient_PanicsOnNilLogger(t *testing.T) {
	assert.Panics(t, func() { NewClient(nil) })
}
