// Package arrayexpress is the catalog client for ArrayExpress, which is
// served through the EBI BioStudies API. Study search goes through the JSON
// search endpoint; sample tables come from the study's SDRF file in the FIRE
// archive layout.
package arrayexpress
