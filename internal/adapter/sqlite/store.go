package sqlite

import "database/sql"

// Store is the importer's store backed by a single SQLite database.
type Store struct {
	*TxManager
	*Repo
}

// NewStore wires a transaction manager and repository over db.
func NewStore(db *sql.DB) Store {
	return Store{TxManager: NewTxManager(db), Repo: NewRepo(db)}
}
