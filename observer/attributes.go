package observer

import "go.opentelemetry.io/otel/attribute"

// Attribute keys for ingestion observability spans and metrics.
var (
	AttrEmbedModel     = attribute.Key("embedding.model")
	AttrEmbedProvider  = attribute.Key("embedding.provider")
	AttrEmbedTextCount = attribute.Key("embedding.text_count")
	AttrEmbedDims      = attribute.Key("embedding.dimensions")

	AttrIndexBackend = attribute.Key("index.backend")
	AttrRecordCount  = attribute.Key("index.record_count")
	AttrFailureCount = attribute.Key("index.failure_count")

	AttrDocumentID = attribute.Key("ingest.document_id")
	AttrStatus     = attribute.Key("status")
)
