package storage

const schema = `
-- The 'cards' table stores every question the user has authored or imported.
CREATE TABLE IF NOT EXISTS cards (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    question TEXT NOT NULL,
    option_a TEXT,
    option_b TEXT,
    option_c TEXT,
    option_d TEXT,
    option_e TEXT,
    correct_answer TEXT,
    blank_answer TEXT,
    question_type TEXT NOT NULL DEFAULT 'multiple_choice', -- 'multiple_choice' or 'fill_in_blank'
    subject TEXT NOT NULL,
    difficulty INTEGER NOT NULL DEFAULT 1,
    image_path TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- The 'sessions' table holds one row per practice or test run.
CREATE TABLE IF NOT EXISTS sessions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at DATETIME NOT NULL,
    ended_at DATETIME,
    total_questions INTEGER NOT NULL,
    correct_answers INTEGER,
    session_type TEXT NOT NULL DEFAULT 'practice' -- 'practice' or 'test'
);

-- The 'attempts' table is an append-only log of answers.
-- Foreign keys are declared but not enforced (PRAGMA foreign_keys is left off).
CREATE TABLE IF NOT EXISTS attempts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id INTEGER NOT NULL,
    card_id INTEGER NOT NULL,
    user_answer TEXT NOT NULL,
    is_correct BOOLEAN NOT NULL,
    time_taken INTEGER,
    attempted_at DATETIME DEFAULT CURRENT_TIMESTAMP,

    FOREIGN KEY(session_id) REFERENCES sessions(id),
    FOREIGN KEY(card_id) REFERENCES cards(id)
);

CREATE INDEX IF NOT EXISTS idx_cards_subject ON cards(subject);
CREATE INDEX IF NOT EXISTS idx_cards_difficulty ON cards(difficulty);
CREATE INDEX IF NOT EXISTS idx_attempts_session ON attempts(session_id);
CREATE INDEX IF NOT EXISTS idx_attempts_card ON attempts(card_id);
`
