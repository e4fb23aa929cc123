package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matsen/blueprint/internal/blueprint"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection holding the node index.
type DB struct {
	db *sql.DB
}

// NodeRow is one indexed blueprint node.
type NodeRow struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Title   string `json:"title,omitempty"`
	EventID string `json:"event_id,omitempty"`
	Path    string `json:"path"`
	Depth   int    `json:"depth"`
	Page    string `json:"page"`
}

const selectNodeFields = `id, type, title, event_id, path, depth, page`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS nodes (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			title TEXT,
			event_id TEXT,
			path TEXT NOT NULL,
			depth INTEGER NOT NULL,
			page TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_nodes_event ON nodes(event_id) WHERE event_id IS NOT NULL AND event_id != '';
	` + ftsSchema

	_, err := db.Exec(schema)
	return err
}

// ftsSchema is the full-text search virtual table (standalone, not external
// content). Trigrams match inside runs of CJK characters.
const ftsSchema = `
	CREATE VIRTUAL TABLE IF NOT EXISTS nodes_fts USING fts5(
		id,
		title,
		type,
		event_id,
		path,
		tokenize = 'trigram'
	);
`

// FlattenDocument lists every node of doc in pre-order with its
// breadcrumb path. Pages are at depth 1.
func FlattenDocument(doc *blueprint.Document) []NodeRow {
	var rows []NodeRow
	for _, page := range doc.Pages {
		rows = append(rows, flatten(page, page.Key(), "", 1)...)
	}
	return rows
}

func flatten(n *blueprint.Node, page, parentPath string, depth int) []NodeRow {
	path := n.Label()
	if parentPath != "" {
		path = parentPath + " > " + path
	}

	rows := []NodeRow{{
		ID:      n.Key(),
		Type:    n.Type,
		Title:   n.Title,
		EventID: n.EventID,
		Path:    path,
		Depth:   depth,
		Page:    page,
	}}
	for _, child := range n.Children {
		rows = append(rows, flatten(child, page, path, depth+1)...)
	}
	return rows
}

// RebuildFromDocument clears the database and indexes every node of doc.
// A node whose identifier repeats an earlier one replaces it.
func (d *DB) RebuildFromDocument(doc *blueprint.Document) (int, error) {
	rows := FlattenDocument(doc)

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM nodes"); err != nil {
		return 0, fmt.Errorf("clearing nodes table: %w", err)
	}
	// Recreated so an index built with another tokenizer is replaced.
	if _, err := tx.Exec("DROP TABLE IF EXISTS nodes_fts"); err != nil {
		return 0, fmt.Errorf("dropping nodes_fts table: %w", err)
	}
	if _, err := tx.Exec(ftsSchema); err != nil {
		return 0, fmt.Errorf("creating nodes_fts table: %w", err)
	}

	nodesStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO nodes (` + selectNodeFields + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing nodes insert: %w", err)
	}
	defer nodesStmt.Close()

	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		_, err := nodesStmt.Exec(r.ID, r.Type, nullableStringValue(r.Title),
			nullableStringValue(r.EventID), r.Path, r.Depth, r.Page)
		if err != nil {
			return 0, fmt.Errorf("inserting node %s: %w", r.ID, err)
		}
		seen[r.ID] = true
	}

	// The FTS table mirrors the deduplicated nodes table.
	if _, err := tx.Exec(`
		INSERT INTO nodes_fts (id, title, type, event_id, path)
		SELECT id, COALESCE(title, ''), type, COALESCE(event_id, ''), path FROM nodes
	`); err != nil {
		return 0, fmt.Errorf("populating fts: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing index: %w", err)
	}
	return len(seen), nil
}

// GetByID retrieves a node by its identifier. Returns nil if absent.
func (d *DB) GetByID(id string) (*NodeRow, error) {
	row := d.db.QueryRow(`SELECT `+selectNodeFields+` FROM nodes WHERE id = ?`, id)
	return scanNode(row)
}

// Search performs a full-text search over titles, types, event ids and paths.
// Every word must match somewhere in the node.
func (d *DB) Search(query string, limit int) ([]NodeRow, error) {
	nodes, err := d.search(query, "", limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	return nodes, nil
}

// SearchField performs a search on a specific field: title, type or event.
func (d *DB) SearchField(field, value string, limit int) ([]NodeRow, error) {
	var column string
	switch field {
	case "title":
		column = "title"
	case "type":
		column = "type"
	case "event":
		column = "event_id"
	default:
		return nil, fmt.Errorf("unknown search field: %s", field)
	}

	nodes, err := d.search(value, column, limit)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", field, err)
	}
	return nodes, nil
}

// likeColumns are scanned when a query word is too short for trigrams.
var likeColumns = []string{"title", "type", "event_id", "path"}

// search matches query against column, or against every column when
// column is empty.
func (d *DB) search(query, column string, limit int) ([]NodeRow, error) {
	words := strings.Fields(query)
	if len(words) == 0 {
		return []NodeRow{}, nil
	}

	var where string
	var args []any
	if hasShortWord(words) {
		where, args = likeClause(words, column)
	} else {
		match := prepareFTSQuery(query)
		if column != "" {
			match = column + " : (" + match + ")"
		}
		where = "id IN (SELECT id FROM nodes_fts WHERE nodes_fts MATCH ?)"
		args = []any{match}
	}

	rows, err := d.db.Query(`
		SELECT `+selectNodeFields+`
		FROM nodes
		WHERE `+where+`
		ORDER BY depth, id
		LIMIT ?`, append(args, limit)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanNodes(rows)
}

// hasShortWord reports whether a word has fewer than three characters,
// which the trigram tokenizer cannot match.
func hasShortWord(words []string) bool {
	for _, w := range words {
		if utf8.RuneCountInString(w) < 3 {
			return true
		}
	}
	return false
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likeClause builds a substring match requiring every word in column, or
// in any of likeColumns when column is empty.
func likeClause(words []string, column string) (string, []any) {
	columns := likeColumns
	if column != "" {
		columns = []string{column}
	}

	var clauses []string
	var args []any
	for _, w := range words {
		pattern := "%" + likeEscaper.Replace(w) + "%"
		var ors []string
		for _, c := range columns {
			ors = append(ors, c+` LIKE ? ESCAPE '\'`)
			args = append(args, pattern)
		}
		clauses = append(clauses, "("+strings.Join(ors, " OR ")+")")
	}
	return strings.Join(clauses, " AND "), args
}

// ListEvents returns the indexed nodes carrying an event id.
func (d *DB) ListEvents() ([]NodeRow, error) {
	rows, err := d.db.Query(`SELECT ` + selectNodeFields + `
		FROM nodes WHERE event_id IS NOT NULL AND event_id != ''
		ORDER BY page, depth, id`)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	return scanNodes(rows)
}

// Count returns the total number of indexed nodes.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM nodes").Scan(&count)
	return count, err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanNode(s scanner) (*NodeRow, error) {
	var n NodeRow
	var title, eventID sql.NullString

	err := s.Scan(&n.ID, &n.Type, &title, &eventID, &n.Path, &n.Depth, &n.Page)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	n.Title = title.String
	n.EventID = eventID.String
	return &n, nil
}

func scanNodes(rows *sql.Rows) ([]NodeRow, error) {
	nodes := []NodeRow{}
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		if n != nil {
			nodes = append(nodes, *n)
		}
	}
	return nodes, rows.Err()
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// prepareFTSQuery quotes every word that is not a plain FTS5 bareword, so
// punctuation is matched literally.
func prepareFTSQuery(query string) string {
	words := strings.Fields(query)
	for i, w := range words {
		if !isBareword(w) {
			words[i] = `"` + strings.ReplaceAll(w, `"`, `""`) + `"`
		}
	}
	return strings.Join(words, " ")
}

func isBareword(w string) bool {
	for _, r := range w {
		if r > unicode.MaxASCII || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}
