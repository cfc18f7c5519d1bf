// Package geo is the catalog client for the Gene Expression Omnibus.
//
// GEO accession grammar, briefly: GPLxxx is a platform, GSMxxx a sample run
// on a platform, GSExxx a series of samples, GDSxxx a curated dataset. The
// client talks to three NCBI surfaces: the Entrez E-utilities (esearch,
// esummary), the accession display endpoint (SOFT text format), and the FTP
// mirror served over HTTPS for supplementary file listings.
package geo
