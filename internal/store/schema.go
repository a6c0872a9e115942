package store

const schemaVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS kv (
    key         TEXT PRIMARY KEY,
    value       TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    amount      TEXT NOT NULL,
    date        TEXT,
    merchant    TEXT,
    category    TEXT,
    pending     INTEGER NOT NULL DEFAULT 0,
    seq         INTEGER NOT NULL,
    fetched_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshots (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    at              TEXT NOT NULL,
    week_id         INTEGER NOT NULL,
    transactions    INTEGER NOT NULL,
    saved           TEXT NOT NULL,
    goal            TEXT NOT NULL,
    weekly_target   TEXT NOT NULL,
    percent         REAL NOT NULL,
    accumulator     TEXT NOT NULL,
    home_runs_left  INTEGER NOT NULL,
    weeks_goal_hit  INTEGER NOT NULL,
    home_run        INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_snapshots_at ON snapshots(at);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
`
