package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for angel documents.
//
// Priorities:
//  1. Fast full-text search on angel names with English stemming
//  2. Series name matches so a series query surfaces its members
//  3. Exact keyword matching on IDs for filtering
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// Name is the primary search target.
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = en.AnalyzerName
	nameFieldMapping.Store = true
	nameFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	seriesNameFieldMapping := bleve.NewTextFieldMapping()
	seriesNameFieldMapping.Analyzer = en.AnalyzerName
	seriesNameFieldMapping.Store = true
	seriesNameFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("series_name", seriesNameFieldMapping)

	// Exact-match fields.
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	seriesIDFieldMapping := bleve.NewTextFieldMapping()
	seriesIDFieldMapping.Analyzer = keyword.Name
	seriesIDFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("series_id", seriesIDFieldMapping)

	cardNumberFieldMapping := bleve.NewNumericFieldMapping()
	cardNumberFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("card_number", cardNumberFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
