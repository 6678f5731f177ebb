// ABOUTME: Context item persistence with embedded vector storage and similarity scan
// ABOUTME: Handles item CRUD, candidate retrieval, access tracking, outcome updates, and retention purge

package storage

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/ctxforge/ctxbrain/internal/models"
)

// itemColumns is the canonical column list for context_items scans.
const itemColumns = `id, project_id, created_by, kind, content, content_hash,
	technology_tags, embedding, outcome_score, created_at, last_accessed_at, access_count`

// CandidateScope narrows the candidate scan for retrieval.
type CandidateScope struct {
	ProjectID    string        // anchor project for the query
	CrossProject bool          // when true, include items from other projects
	Technologies []string      // when non-empty, at least one tag must match
	Kinds        []models.Kind // when non-empty, kind must be one of these
	Limit        int           // max candidates returned, 0 means no cap
}

// ItemStore manages context item rows.
type ItemStore struct {
	db *DB
}

// NewItemStore creates an item store backed by the given database.
func NewItemStore(db *DB) *ItemStore {
	return &ItemStore{db: db}
}

// Put inserts a new context item. The caller is responsible for duplicate
// detection; the UNIQUE(project_id, content_hash) constraint is the backstop.
func (s *ItemStore) Put(item *models.ContextItem) error {
	tags, err := json.Marshal(item.TechnologyTags)
	if err != nil {
		return fmt.Errorf("failed to marshal technology tags: %w", err)
	}

	var blob []byte
	if len(item.Embedding) > 0 {
		blob = vectorToBlob(item.Embedding)
	}

	_, err = s.db.conn.Exec(`
		INSERT INTO context_items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID, item.ProjectID, item.CreatedBy, string(item.Kind), item.Content,
		item.ContentHash, string(tags), blob, item.OutcomeScore.Float(),
		item.CreatedAt, item.LastAccessedAt, item.AccessCount)
	if err != nil {
		return fmt.Errorf("failed to insert context item: %w", err)
	}

	return nil
}

// Get retrieves a context item by ID. Returns nil if not found.
func (s *ItemStore) Get(id string) (*models.ContextItem, error) {
	row := s.db.conn.QueryRow(`SELECT `+itemColumns+` FROM context_items WHERE id = ?`, id)

	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get context item: %w", err)
	}

	return item, nil
}

// FindByContentHash looks up an item by its project and content hash.
// Returns nil if no item with that content exists in the project.
func (s *ItemStore) FindByContentHash(projectID, contentHash string) (*models.ContextItem, error) {
	row := s.db.conn.QueryRow(`
		SELECT `+itemColumns+` FROM context_items
		WHERE project_id = ? AND content_hash = ?
	`, projectID, contentHash)

	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find item by content hash: %w", err)
	}

	return item, nil
}

// Candidates scans items in scope and scores them against the query vector.
// A nil query vector (or an item without an embedding) scores similarity 0,
// which leaves ordering to recency. Results are ordered by similarity
// descending, then created_at descending, then ID ascending, and truncated
// to the scope limit.
func (s *ItemStore) Candidates(queryVector []float64, scope CandidateScope) ([]models.Candidate, error) {
	query := `SELECT ` + itemColumns + ` FROM context_items`
	var args []any
	if !scope.CrossProject {
		query += ` WHERE project_id = ?`
		args = append(args, scope.ProjectID)
	}

	rows, err := s.db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to scan candidates: %w", err)
	}
	defer rows.Close()

	var out []models.Candidate
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate row: %w", err)
		}
		if !scope.matches(item) {
			continue
		}

		sim := 0.0
		if queryVector != nil && item.Embedding != nil {
			sim = CosineSimilarity(queryVector, item.Embedding)
		}
		out = append(out, models.Candidate{Item: *item, Similarity: sim})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidates: %w", err)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		if !out[i].Item.CreatedAt.Equal(out[j].Item.CreatedAt) {
			return out[i].Item.CreatedAt.After(out[j].Item.CreatedAt)
		}
		return out[i].Item.ID < out[j].Item.ID
	})

	if scope.Limit > 0 && len(out) > scope.Limit {
		out = out[:scope.Limit]
	}

	return out, nil
}

// matches reports whether an item passes the kind and technology filters.
func (sc CandidateScope) matches(item *models.ContextItem) bool {
	if len(sc.Kinds) > 0 {
		found := false
		for _, k := range sc.Kinds {
			if item.Kind == k {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(sc.Technologies) > 0 && !item.HasAnyTag(sc.Technologies) {
		return false
	}
	return true
}

// TouchAll bumps access counts and last-accessed timestamps for the given items.
func (s *ItemStore) TouchAll(ids []string, now time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(ids)+1)
	args = append(args, now)
	for _, id := range ids {
		args = append(args, id)
	}

	_, err := s.db.conn.Exec(`
		UPDATE context_items
		SET access_count = access_count + 1, last_accessed_at = ?
		WHERE id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to touch items: %w", err)
	}

	return nil
}

// AdjustOutcome nudges an item's outcome score by delta, clamped to [0, 1],
// as a single atomic statement. Returns false if the item does not exist.
func (s *ItemStore) AdjustOutcome(id string, delta float64) (bool, error) {
	result, err := s.db.conn.Exec(`
		UPDATE context_items
		SET outcome_score = MAX(0.0, MIN(1.0, outcome_score + ?))
		WHERE id = ?
	`, delta, id)
	if err != nil {
		return false, fmt.Errorf("failed to adjust outcome score: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}

	return affected > 0, nil
}

// ListKind returns all items of a kind, newest first.
func (s *ItemStore) ListKind(kind models.Kind) ([]models.ContextItem, error) {
	rows, err := s.db.conn.Query(`
		SELECT `+itemColumns+` FROM context_items
		WHERE kind = ?
		ORDER BY created_at DESC, id ASC
	`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to list items by kind: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// MissingEmbeddings returns items stored without an embedding, oldest first,
// so a later repair pass can backfill them.
func (s *ItemStore) MissingEmbeddings(limit int) ([]models.ContextItem, error) {
	rows, err := s.db.conn.Query(`
		SELECT `+itemColumns+` FROM context_items
		WHERE embedding IS NULL
		ORDER BY created_at ASC, id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list items missing embeddings: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// UpdateEmbedding backfills the embedding of an existing item.
func (s *ItemStore) UpdateEmbedding(id string, vector []float64) error {
	_, err := s.db.conn.Exec(`
		UPDATE context_items SET embedding = ? WHERE id = ?
	`, vectorToBlob(vector), id)
	if err != nil {
		return fmt.Errorf("failed to update embedding: %w", err)
	}
	return nil
}

// PurgeExpired deletes items older than the cutoff that were rarely accessed
// and scored below the outcome floor. Returns the number of rows deleted.
func (s *ItemStore) PurgeExpired(cutoff time.Time, maxAccess int, outcomeFloor float64) (int64, error) {
	result, err := s.db.conn.Exec(`
		DELETE FROM context_items
		WHERE created_at < ? AND access_count <= ? AND outcome_score < ?
	`, cutoff, maxAccess, outcomeFloor)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired items: %w", err)
	}

	return result.RowsAffected()
}

// CountByKind returns item counts grouped by kind.
func (s *ItemStore) CountByKind() (map[models.Kind]int, error) {
	rows, err := s.db.conn.Query(`SELECT kind, COUNT(*) FROM context_items GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Kind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		counts[models.Kind(kind)] = n
	}

	return counts, rows.Err()
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

// scanItem reads one context_items row into a model.
func scanItem(row scanner) (*models.ContextItem, error) {
	var item models.ContextItem
	var kind, tagsJSON string
	var blob []byte
	var outcome float64

	err := row.Scan(&item.ID, &item.ProjectID, &item.CreatedBy, &kind, &item.Content,
		&item.ContentHash, &tagsJSON, &blob, &outcome,
		&item.CreatedAt, &item.LastAccessedAt, &item.AccessCount)
	if err != nil {
		return nil, err
	}

	item.Kind = models.Kind(kind)
	item.OutcomeScore = models.Confidence(outcome)
	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &item.TechnologyTags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal technology tags: %w", err)
		}
	}
	if len(blob) > 0 {
		vec, err := blobToVector(blob)
		if err != nil {
			return nil, fmt.Errorf("failed to decode embedding: %w", err)
		}
		item.Embedding = vec
	}

	return &item, nil
}

// collectItems drains a rows cursor into a slice of items.
func collectItems(rows *sql.Rows) ([]models.ContextItem, error) {
	var items []models.ContextItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// vectorToBlob serializes a float64 vector to little-endian bytes.
func vectorToBlob(vector []float64) []byte {
	blob := make([]byte, len(vector)*8)
	for i, v := range vector {
		binary.LittleEndian.PutUint64(blob[i*8:], math.Float64bits(v))
	}
	return blob
}

// blobToVector deserializes little-endian bytes back to a float64 vector.
func blobToVector(blob []byte) ([]float64, error) {
	if len(blob)%8 != 0 {
		return nil, fmt.Errorf("invalid embedding blob length %d", len(blob))
	}

	vector := make([]float64, len(blob)/8)
	for i := range vector {
		vector[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return vector, nil
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Mismatched lengths or zero-magnitude vectors score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
