package content

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/credsec/internal/common"
	"github.com/dmitrijs2005/credsec/internal/graphx"
	"github.com/dmitrijs2005/credsec/internal/server/models"
)

// runner is the subset of graphx.Client the repository needs; it keeps the
// repository testable with an in-memory fake.
type runner interface {
	Run(ctx context.Context, cypher string, params map[string]any) ([]graphx.Record, error)
	RunWrite(ctx context.Context, cypher string, params map[string]any) ([]graphx.Record, error)
}

// GraphRepository stores content lines in a property graph as
// (:TLD)-[:CONTAINS]->(:Domain)-[:CONTAINS]->(:ContentLine).
type GraphRepository struct {
	db runner
}

func NewGraphRepository(db runner) *GraphRepository {
	return &GraphRepository{db: db}
}

// fromFilters translates the storage-side filters into typed conditions.
// The email-domain-suffix filter is plaintext-only and handled after
// decryption by the search engine, never here.
func fromFilters(f models.Filters) *predicate {
	p := newPredicate()

	if f.CreatedFrom != nil {
		p.add("c.created_at >= $created_from", "created_from", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		p.add("c.created_at <= $created_to", "created_to", *f.CreatedTo)
	}
	if f.Domain != "" {
		p.add("d.name = $filter_domain", "filter_domain", f.Domain)
	}
	if f.TLD != "" {
		p.add("t.name = $filter_tld", "filter_tld", f.TLD)
	}
	if f.HasPassword != nil {
		if *f.HasPassword {
			p.addExpr("c.password IS NOT NULL")
		} else {
			p.addExpr("c.password IS NULL")
		}
	}
	if f.Source != "" {
		p.add("c.source = $filter_source", "filter_source", string(f.Source))
	}
	if f.Verified != nil {
		p.add("c.verified = $filter_verified", "filter_verified", *f.Verified)
	}

	return p
}

const returnLine = "RETURN c, d.name AS domain, t.name AS tld"

func (r *GraphRepository) Create(ctx context.Context, line *models.ContentLine) error {
	query := `
		MERGE (t:TLD {name: $tld})
		MERGE (t)-[:CONTAINS]->(d:Domain {name: $domain})
		CREATE (c:ContentLine {
			main_data_id: $main_data_id,
			email: $email,
			password: $password,
			line: $line,
			email_hash: $email_hash,
			created_at: $created_at,
			updated_at: $updated_at,
			source: $source,
			verified: $verified,
			quality_score: $quality_score
		})
		MERGE (d)-[:CONTAINS]->(c)
	`

	_, err := r.db.RunWrite(ctx, query, lineParams(line))
	if err != nil {
		return fmt.Errorf("creating content line: %w", err)
	}
	return nil
}

func (r *GraphRepository) Update(ctx context.Context, line *models.ContentLine) error {
	query := `
		MATCH (c:ContentLine {main_data_id: $main_data_id})
		OPTIONAL MATCH (c)<-[old:CONTAINS]-(:Domain)
		DELETE old
		WITH DISTINCT c
		MERGE (t:TLD {name: $tld})
		MERGE (t)-[:CONTAINS]->(d:Domain {name: $domain})
		MERGE (d)-[:CONTAINS]->(c)
		SET c.email = $email,
		    c.password = $password,
		    c.line = $line,
		    c.email_hash = $email_hash,
		    c.updated_at = $updated_at,
		    c.source = $source,
		    c.verified = $verified,
		    c.quality_score = $quality_score
		RETURN c.main_data_id AS main_data_id
	`

	rows, err := r.db.RunWrite(ctx, query, lineParams(line))
	if err != nil {
		return fmt.Errorf("updating content line: %w", err)
	}
	if len(rows) == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *GraphRepository) DeleteByMainDataID(ctx context.Context, mainDataID string) error {
	query := `
		OPTIONAL MATCH (c:ContentLine {main_data_id: $main_data_id})
		DETACH DELETE c
		RETURN count(c) AS deleted
	`

	rows, err := r.db.RunWrite(ctx, query, map[string]any{"main_data_id": mainDataID})
	if err != nil {
		return fmt.Errorf("deleting content line: %w", err)
	}
	if len(rows) == 0 || asInt(rows[0]["deleted"]) == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *GraphRepository) GetByMainDataID(ctx context.Context, mainDataID string) (*models.ContentLine, error) {
	query := `
		MATCH (t:TLD)-[:CONTAINS]->(d:Domain)-[:CONTAINS]->(c:ContentLine {main_data_id: $main_data_id})
		` + returnLine

	rows, err := r.db.Run(ctx, query, map[string]any{"main_data_id": mainDataID})
	if err != nil {
		return nil, fmt.Errorf("fetching content line: %w", err)
	}
	if len(rows) == 0 {
		return nil, common.ErrorNotFound
	}
	return lineFromRecord(rows[0])
}

func (r *GraphRepository) FindByEmailHash(ctx context.Context, hash string, f models.Filters) ([]*models.ContentLine, error) {
	p := fromFilters(f)
	query := fmt.Sprintf(`
		MATCH (t:TLD)-[:CONTAINS]->(d:Domain)-[:CONTAINS]->(c:ContentLine {email_hash: $email_hash})
		%s
		%s
	`, p.where(), returnLine)

	rows, err := r.db.Run(ctx, query, p.mergeInto(map[string]any{"email_hash": hash}))
	if err != nil {
		return nil, fmt.Errorf("hash lookup: %w", err)
	}
	return linesFromRecords(rows)
}

func (r *GraphRepository) FindByTLD(ctx context.Context, name string, f models.Filters) ([]*models.ContentLine, error) {
	p := fromFilters(f)
	query := fmt.Sprintf(`
		MATCH (t:TLD {name: $tld_name})-[:CONTAINS]->(d:Domain)-[:CONTAINS]->(c:ContentLine)
		%s
		%s
	`, p.where(), returnLine)

	rows, err := r.db.Run(ctx, query, p.mergeInto(map[string]any{"tld_name": name}))
	if err != nil {
		return nil, fmt.Errorf("tld traversal: %w", err)
	}
	return linesFromRecords(rows)
}

func (r *GraphRepository) FindByDomainContains(ctx context.Context, substr string, f models.Filters, limit int) ([]*models.ContentLine, error) {
	p := fromFilters(f)
	p.add("d.name CONTAINS $domain_substr", "domain_substr", substr)
	query := fmt.Sprintf(`
		MATCH (t:TLD)-[:CONTAINS]->(d:Domain)-[:CONTAINS]->(c:ContentLine)
		%s
		RETURN DISTINCT c, d.name AS domain, t.name AS tld
		LIMIT $limit
	`, p.where())

	rows, err := r.db.Run(ctx, query, p.mergeInto(map[string]any{"limit": limit}))
	if err != nil {
		return nil, fmt.Errorf("domain substring lookup: %w", err)
	}
	return linesFromRecords(rows)
}

func (r *GraphRepository) ListRecent(ctx context.Context, f models.Filters, limit int) ([]*models.ContentLine, error) {
	p := fromFilters(f)
	query := fmt.Sprintf(`
		MATCH (t:TLD)-[:CONTAINS]->(d:Domain)-[:CONTAINS]->(c:ContentLine)
		%s
		%s
		ORDER BY c.created_at DESC
		LIMIT $limit
	`, p.where(), returnLine)

	rows, err := r.db.Run(ctx, query, p.mergeInto(map[string]any{"limit": limit}))
	if err != nil {
		return nil, fmt.Errorf("listing recent lines: %w", err)
	}
	return linesFromRecords(rows)
}

func (r *GraphRepository) UpsertByEmailHash(ctx context.Context, line *models.ContentLine) (bool, error) {
	query := `
		MERGE (t:TLD {name: $tld})
		MERGE (t)-[:CONTAINS]->(d:Domain {name: $domain})
		MERGE (c:ContentLine {email_hash: $email_hash})
		ON CREATE SET c.main_data_id = $main_data_id,
		              c.created_at = $now,
		              c.verified = false
		SET c.email = $email,
		    c.password = $password,
		    c.line = $line,
		    c.source = $source,
		    c.updated_at = $now,
		    c.last_synced_at = coalesce($last_synced_at, c.last_synced_at),
		    c.quality_score = $quality_score
		MERGE (d)-[:CONTAINS]->(c)
		RETURN c.created_at AS created_at
	`

	// A zero LastSyncedAt means the line was never synced (plain import);
	// the null parameter keeps any earlier sync timestamp intact.
	now := time.Now().UTC()
	var lastSynced any
	if !line.LastSyncedAt.IsZero() {
		now = line.LastSyncedAt
		lastSynced = line.LastSyncedAt
	}

	params := map[string]any{
		"tld":            line.TLDName,
		"domain":         line.DomainName,
		"email_hash":     line.EmailHash,
		"main_data_id":   line.MainDataID,
		"email":          line.EncryptedEmail,
		"password":       passwordParam(line),
		"line":           line.EncryptedLine,
		"source":         string(line.Source),
		"quality_score":  line.QualityScore,
		"now":            now,
		"last_synced_at": lastSynced,
	}

	rows, err := r.db.RunWrite(ctx, query, params)
	if err != nil {
		return false, fmt.Errorf("upserting content line: %w", err)
	}
	if len(rows) == 0 {
		return false, fmt.Errorf("%w: upsert returned no rows", common.ErrorQuery)
	}

	createdAt, ok := rows[0]["created_at"].(time.Time)
	return ok && createdAt.Equal(now), nil
}

func (r *GraphRepository) AllLines(ctx context.Context) ([]*models.ContentLine, error) {
	query := `
		MATCH (t:TLD)-[:CONTAINS]->(d:Domain)-[:CONTAINS]->(c:ContentLine)
		` + returnLine + `
		ORDER BY c.created_at DESC
	`

	rows, err := r.db.Run(ctx, query, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("listing all lines: %w", err)
	}
	return linesFromRecords(rows)
}

func (r *GraphRepository) Stats(ctx context.Context) (*Stats, error) {
	rows, err := r.db.Run(ctx, `
		MATCH (c:ContentLine)
		RETURN count(c) AS lines, coalesce(avg(c.quality_score), 0.0) AS avg_quality
	`, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("counting lines: %w", err)
	}

	stats := &Stats{}
	if len(rows) > 0 {
		stats.Lines = asInt(rows[0]["lines"])
		if avg, ok := rows[0]["avg_quality"].(float64); ok {
			stats.AvgQuality = avg
		}
	}

	rows, err = r.db.Run(ctx, `
		MATCH (d:Domain)
		OPTIONAL MATCH (t:TLD)
		RETURN count(DISTINCT d) AS domains, count(DISTINCT t) AS tlds
	`, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("counting hierarchy nodes: %w", err)
	}
	if len(rows) > 0 {
		stats.Domains = asInt(rows[0]["domains"])
		stats.TLDs = asInt(rows[0]["tlds"])
	}

	return stats, nil
}

func lineParams(line *models.ContentLine) map[string]any {
	return map[string]any{
		"main_data_id":  line.MainDataID,
		"email":         line.EncryptedEmail,
		"password":      passwordParam(line),
		"line":          line.EncryptedLine,
		"email_hash":    line.EmailHash,
		"domain":        line.DomainName,
		"tld":           line.TLDName,
		"created_at":    line.CreatedAt,
		"updated_at":    line.UpdatedAt,
		"source":        string(line.Source),
		"verified":      line.Verified,
		"quality_score": line.QualityScore,
	}
}

// passwordParam maps an absent password to a store-level null so the
// presence filter can run without decryption.
func passwordParam(line *models.ContentLine) any {
	if !line.HasPassword() {
		return nil
	}
	return line.EncryptedPassword
}

func linesFromRecords(rows []graphx.Record) ([]*models.ContentLine, error) {
	lines := make([]*models.ContentLine, 0, len(rows))
	for _, row := range rows {
		line, err := lineFromRecord(row)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func lineFromRecord(row graphx.Record) (*models.ContentLine, error) {
	props, ok := row["c"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: record is missing the content node", common.ErrorQuery)
	}

	line := &models.ContentLine{
		MainDataID:     propString(props, "main_data_id"),
		EncryptedEmail: propString(props, "email"),
		EncryptedLine:  propString(props, "line"),
		EmailHash:      propString(props, "email_hash"),
		DomainName:     propString(row, "domain"),
		TLDName:        propString(row, "tld"),
		CreatedAt:      propTime(props, "created_at"),
		UpdatedAt:      propTime(props, "updated_at"),
		LastSyncedAt:   propTime(props, "last_synced_at"),
		Source:         models.Source(propString(props, "source")),
		Verified:       propBool(props, "verified"),
		QualityScore:   asInt(props["quality_score"]),
	}
	if pw, ok := props["password"].(string); ok {
		line.EncryptedPassword = pw
	}
	return line, nil
}

func propString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func propTime(m map[string]any, key string) time.Time {
	t, _ := m[key].(time.Time)
	return t
}

func propBool(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func asInt(v any) int {
	switch x := v.(type) {
	case int64:
		return int(x)
	case int:
		return x
	case float64:
		return int(x)
	default:
		return 0
	}
}
