package store

// Timestamps are unix milliseconds; 0 means unset. Structured columns
// (spine, metadata, processing output, bundle manifests) are stored as
// JSON text since the services treat them as opaque units.
const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id                TEXT PRIMARY KEY,
	tenant_id         TEXT NOT NULL,
	created_by        TEXT NOT NULL DEFAULT '',
	input_type        TEXT NOT NULL,
	title             TEXT NOT NULL,
	raw_text          TEXT NOT NULL,
	source_reference  TEXT NOT NULL DEFAULT '',
	template_id       TEXT NOT NULL,
	spine_json        TEXT NOT NULL,
	provided_json     TEXT NOT NULL DEFAULT '{}',
	processed_json    TEXT,
	processing_digest TEXT NOT NULL DEFAULT '',
	processed_at      INTEGER NOT NULL DEFAULT 0,
	created_at        INTEGER NOT NULL,
	updated_at        INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_tenant ON documents(tenant_id, created_at DESC);

CREATE TABLE IF NOT EXISTS export_artifacts (
	id            TEXT PRIMARY KEY,
	tenant_id     TEXT NOT NULL,
	document_id   TEXT NOT NULL,
	format        TEXT NOT NULL,
	status        TEXT NOT NULL,
	filename      TEXT NOT NULL DEFAULT '',
	mime_type     TEXT NOT NULL DEFAULT '',
	bytes         INTEGER NOT NULL DEFAULT 0,
	sha256        TEXT NOT NULL DEFAULT '',
	storage_path  TEXT NOT NULL DEFAULT '',
	error         TEXT NOT NULL DEFAULT '',
	manifest_json TEXT,
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_artifacts_tenant ON export_artifacts(tenant_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_artifacts_document ON export_artifacts(document_id);

CREATE TABLE IF NOT EXISTS templates (
	id         TEXT NOT NULL,
	tenant_id  TEXT NOT NULL DEFAULT '',
	is_system  INTEGER NOT NULL DEFAULT 0,
	spec_json  TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (tenant_id, id)
);
`
