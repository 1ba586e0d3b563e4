package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for recipe documents.
//
// Text fields use the English analyzer so "tomatoes" finds "tomato".
// Tags are mapped twice: tag_text for matching words inside a tag name,
// and tags/tag_keys as keywords for facets and exact filters.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	text := func(store, vectors bool) *mapping.FieldMapping {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = en.AnalyzerName
		fm.Store = store
		fm.IncludeTermVectors = vectors
		return fm
	}
	keywordField := func(store bool) *mapping.FieldMapping {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = keyword.Name
		fm.Store = store
		return fm
	}
	numeric := func() *mapping.FieldMapping {
		fm := bleve.NewNumericFieldMapping()
		fm.Store = true
		return fm
	}

	// Full-text fields. Title is stored for result rendering and highlighted.
	docMapping.AddFieldMappingsAt("title", text(true, true))
	docMapping.AddFieldMappingsAt("description", text(false, true))
	docMapping.AddFieldMappingsAt("ingredients", text(false, true))
	docMapping.AddFieldMappingsAt("tag_text", text(false, false))

	// Keyword fields (exact match, facetable).
	docMapping.AddFieldMappingsAt("id", keywordField(false))
	docMapping.AddFieldMappingsAt("author_id", keywordField(true))
	docMapping.AddFieldMappingsAt("difficulty", keywordField(true))
	docMapping.AddFieldMappingsAt("tags", keywordField(true))
	docMapping.AddFieldMappingsAt("tag_keys", keywordField(false))

	// Numeric fields for range filters and sorting.
	docMapping.AddFieldMappingsAt("total_time", numeric())
	docMapping.AddFieldMappingsAt("created_at", numeric())

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
