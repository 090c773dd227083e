package db

const schema = `
PRAGMA synchronous = NORMAL;
PRAGMA temp_store = MEMORY;

-- Memoized audit results keyed by input fingerprint
CREATE TABLE IF NOT EXISTS audit_cache (
    cache_key TEXT PRIMARY KEY,
    payload BLOB NOT NULL,
    created_at INTEGER NOT NULL,  -- unix nanoseconds
    expires_at INTEGER NOT NULL   -- unix nanoseconds
);

CREATE INDEX IF NOT EXISTS idx_audit_cache_expires ON audit_cache(expires_at);
`
