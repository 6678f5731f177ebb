// ABOUTME: SQL schema definition for the context intelligence database
// ABOUTME: Defines projects, context items, developer profiles, pattern links, and search analytics

package storage

// SchemaVersion is the current schema version.
const SchemaVersion = 1

// Schema contains the complete database schema.
const Schema = `
-- Registered projects (scope boundaries for retrieval)
CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    root_path TEXT NOT NULL DEFAULT '',
    technologies TEXT NOT NULL DEFAULT '[]',  -- JSON array
    created_at DATETIME NOT NULL
);

-- Context items: the durable unit of developer history
CREATE TABLE IF NOT EXISTS context_items (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    created_by TEXT NOT NULL DEFAULT '',
    kind TEXT NOT NULL,
    content TEXT NOT NULL,
    content_hash TEXT NOT NULL,
    technology_tags TEXT NOT NULL DEFAULT '[]',  -- JSON array
    embedding BLOB,                              -- float64 little-endian, NULL when unavailable
    outcome_score REAL NOT NULL DEFAULT 0.5,
    created_at DATETIME NOT NULL,
    last_accessed_at DATETIME NOT NULL,
    access_count INTEGER NOT NULL DEFAULT 0,
    UNIQUE(project_id, content_hash),
    FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_items_project ON context_items(project_id);
CREATE INDEX IF NOT EXISTS idx_items_kind ON context_items(kind);
CREATE INDEX IF NOT EXISTS idx_items_created ON context_items(created_at);

-- Developer preference profiles, one row per developer
CREATE TABLE IF NOT EXISTS developer_profiles (
    developer_id TEXT PRIMARY KEY,
    technology_weights TEXT NOT NULL DEFAULT '{}',  -- JSON object
    pattern_confidence TEXT NOT NULL DEFAULT '{}',  -- JSON object
    anti_patterns TEXT NOT NULL DEFAULT '{}',       -- JSON object
    transfer_stats TEXT NOT NULL DEFAULT '{}',      -- JSON object
    evolution_log TEXT NOT NULL DEFAULT '[]',       -- JSON array
    update_count INTEGER NOT NULL DEFAULT 0,
    updated_at DATETIME NOT NULL
);

-- Precomputed cross-technology pattern links, replaced wholesale on recompute
CREATE TABLE IF NOT EXISTS pattern_links (
    source_pattern_id TEXT NOT NULL,
    target_technology TEXT NOT NULL,
    target_item_id TEXT NOT NULL,
    adapted_content TEXT NOT NULL DEFAULT '',
    similarity REAL NOT NULL,
    adaptation_cost REAL NOT NULL,
    success_probability REAL NOT NULL,
    computed_at DATETIME NOT NULL,
    PRIMARY KEY (source_pattern_id, target_technology, target_item_id)
);

CREATE INDEX IF NOT EXISTS idx_links_source ON pattern_links(source_pattern_id);

-- Retrieval analytics, one row per rank call
CREATE TABLE IF NOT EXISTS search_analytics (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    query TEXT NOT NULL,
    developer_id TEXT NOT NULL DEFAULT '',
    project_id TEXT NOT NULL DEFAULT '',
    result_count INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    degraded INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analytics_created ON search_analytics(created_at);
`
