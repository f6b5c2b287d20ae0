package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeIndexCatalogValidDocument(t *testing.T) {
	doc := []byte(`{
		"version": 1,
		"indexes": {
			"orders": [
				{"definition": {"name": "by_total", "type": "bloom", "fields": ["total"]}, "metadata": {"builtAt": 123}}
			]
		}
	}`)

	cat, err := DecodeIndexCatalog(doc)
	require.NoError(t, err)
	assert.Equal(t, 1, cat.Version)
	require.Len(t, cat.Indexes["orders"], 1)
	assert.Equal(t, "by_total", cat.Indexes["orders"][0].Definition.Name)
}

func TestDecodeIndexCatalogRejectsNonNumericVersion(t *testing.T) {
	doc := []byte(`{"version": "1", "indexes": {}}`)
	_, err := DecodeIndexCatalog(doc)
	assert.Error(t, err)
}

func TestDecodeIndexCatalogRejectsArrayIndexes(t *testing.T) {
	doc := []byte(`{"version": 1, "indexes": []}`)
	_, err := DecodeIndexCatalog(doc)
	assert.Error(t, err)
}

func TestDecodeIndexCatalogRejectsNonArrayNamespaceEntry(t *testing.T) {
	doc := []byte(`{"version": 1, "indexes": {"orders": {"name": "x"}}}`)
	_, err := DecodeIndexCatalog(doc)
	assert.Error(t, err)
}

func TestDecodeIndexCatalogRejectsMissingDefinition(t *testing.T) {
	doc := []byte(`{"version": 1, "indexes": {"orders": [{"metadata": {}}]}}`)
	_, err := DecodeIndexCatalog(doc)
	assert.Error(t, err)
}

func TestDecodeIndexCatalogRejectsMissingMetadata(t *testing.T) {
	doc := []byte(`{"version": 1, "indexes": {"orders": [
		{"definition": {"name": "x", "type": "bloom", "fields": []}}
	]}}`)
	_, err := DecodeIndexCatalog(doc)
	assert.Error(t, err)
}

func TestDecodeIndexCatalogRejectsNonStringDefinitionFields(t *testing.T) {
	doc := []byte(`{"version": 1, "indexes": {"orders": [
		{"definition": {"name": 5, "type": "bloom", "fields": []}, "metadata": {}}
	]}}`)
	_, err := DecodeIndexCatalog(doc)
	assert.Error(t, err)
}

func TestDecodeIndexCatalogRejectsMalformedJSON(t *testing.T) {
	_, err := DecodeIndexCatalog([]byte(`not json`))
	assert.Error(t, err)
}
