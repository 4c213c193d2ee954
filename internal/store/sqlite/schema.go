package sqlite

// Schema creates the ledger tables. Dates are stored as YYYY-MM-DD text and
// amounts as fixed two-decimal text so no precision is lost to REAL.
const Schema = `
CREATE TABLE IF NOT EXISTS categories (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT NOT NULL,
    type        TEXT NOT NULL CHECK (type IN ('income', 'expense', 'transfer')),
    description TEXT NOT NULL DEFAULT '',
    UNIQUE (name, type)
);

CREATE TABLE IF NOT EXISTS bank_accounts (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id         INTEGER NOT NULL,
    account_name    TEXT NOT NULL,
    current_balance TEXT NOT NULL DEFAULT '0.00',
    currency        TEXT NOT NULL DEFAULT 'INR',
    created_at      TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at      TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (user_id, account_name)
);

CREATE TABLE IF NOT EXISTS transactions (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id         INTEGER NOT NULL,
    bank_account_id INTEGER NOT NULL REFERENCES bank_accounts (id),
    category_id     INTEGER NOT NULL REFERENCES categories (id),
    date            TEXT NOT NULL,             -- YYYY-MM-DD
    description     TEXT NOT NULL,
    amount          TEXT NOT NULL,             -- signed, two decimals
    abs_amount      TEXT NOT NULL,             -- |amount|, for the existing check
    type            TEXT NOT NULL CHECK (type IN ('income', 'expense', 'transfer')),
    debit_account   TEXT NOT NULL,
    credit_account  TEXT NOT NULL,
    source          TEXT NOT NULL DEFAULT 'import',
    batch_id        TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_transactions_user_date
    ON transactions (user_id, date);
`
