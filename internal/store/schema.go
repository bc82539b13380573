package store

// Schema creates every table idempotently. Amounts and balances are stored as
// fixed two-decimal text so that equality lookups are exact.
const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    owner TEXT NOT NULL,
    description TEXT NOT NULL,
    last_digits TEXT NOT NULL,
    entity TEXT NOT NULL,
    initial_balance TEXT NOT NULL,
    current_balance TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS movements (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    account_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
    category_id INTEGER REFERENCES categories(id) ON DELETE SET NULL,
    description TEXT NOT NULL,
    amount TEXT NOT NULL,
    balance TEXT,
    date TEXT NOT NULL            -- YYYY-MM-DD
);

CREATE INDEX IF NOT EXISTS idx_movements_account_date
    ON movements(account_id, date);

CREATE INDEX IF NOT EXISTS idx_movements_dedup
    ON movements(account_id, date, amount, description);

CREATE TABLE IF NOT EXISTS suggestion_rules (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    expression TEXT NOT NULL,
    category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS import_runs (
    id TEXT PRIMARY KEY,          -- UUID
    account_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
    entity TEXT NOT NULL,
    file_name TEXT NOT NULL,
    accepted INTEGER NOT NULL,
    rejected INTEGER NOT NULL,
    imported_at TIMESTAMP NOT NULL
);
`
