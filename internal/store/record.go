package store

import (
	"database/sql"
	"fmt"
	"time"

	"spat/internal/identity"
)

// Record is one tracked package repository.
type Record struct {
	ID                int64            `json:"id"`
	URL               string           `json:"url"`
	Owner             string           `json:"owner"`
	Name              string           `json:"name"`
	Description       string           `json:"description,omitempty"`
	Language          string           `json:"language,omitempty"`
	License           string           `json:"license,omitempty"`
	DefaultBranch     string           `json:"defaultBranch,omitempty"`
	Stars             int              `json:"stars"`
	Forks             int              `json:"forks"`
	Watchers          int              `json:"watchers"`
	OpenIssues        int              `json:"openIssues"`
	CreatedAt         *time.Time       `json:"createdAt,omitempty"`
	UpdatedAt         *time.Time       `json:"updatedAt,omitempty"`
	PushedAt          *time.Time       `json:"pushedAt,omitempty"`
	LastSynced        *time.Time       `json:"lastSynced,omitempty"`
	SyncError         string           `json:"syncError,omitempty"`
	HasManifest       bool             `json:"hasManifest"`
	ManifestText      string           `json:"-"`
	ToolsVersion      string           `json:"toolsVersion,omitempty"`
	DependenciesCount int              `json:"dependenciesCount"`
	LinuxCompatible   bool             `json:"linuxCompatible"`
	AndroidCompatible bool             `json:"androidCompatible"`
	State             PackageState     `json:"state"`
	ProcessingStatus  ProcessingStatus `json:"processingStatus"`
}

// PackageID returns the owner/repo identity of the record.
func (r *Record) PackageID() identity.PackageID {
	return identity.PackageID{Owner: r.Owner, Repo: r.Name}
}

const recordColumns = `
	id, url, owner, name, description, language, license, default_branch,
	stars, forks, watchers, open_issues,
	created_at, updated_at, pushed_at, last_synced, sync_error,
	has_manifest, manifest_zstd, tools_version, dependencies_count,
	linux_compatible, android_compatible, state, processing_status
`

// Upsert inserts a record or refreshes the metadata of an existing one,
// keyed by URL. Re-imports never clobber a curated state or an attached
// manifest; those columns are owned by TransitionState and SetManifest.
// Returns true when a new row was created.
func (s *Store) Upsert(r *Record) (bool, error) {
	if r.URL == "" {
		return false, fmt.Errorf("record has no url")
	}
	if r.State == "" {
		r.State = StateTracking
	}
	if !r.State.Valid() {
		return false, fmt.Errorf("invalid state %q for %s", r.State, r.URL)
	}
	if r.ProcessingStatus == "" {
		r.ProcessingStatus = ProcessingPending
	}

	var exists bool
	err := s.conn.QueryRow("SELECT EXISTS(SELECT 1 FROM repositories WHERE url = ?)", r.URL).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check record: %w", err)
	}

	query := `
		INSERT INTO repositories (
			url, owner, name, description, language, license, default_branch,
			stars, forks, watchers, open_issues,
			created_at, updated_at, pushed_at, last_synced, sync_error,
			linux_compatible, android_compatible, state, processing_status
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			owner = excluded.owner,
			name = excluded.name,
			description = excluded.description,
			language = excluded.language,
			license = excluded.license,
			default_branch = excluded.default_branch,
			stars = excluded.stars,
			forks = excluded.forks,
			watchers = excluded.watchers,
			open_issues = excluded.open_issues,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			pushed_at = excluded.pushed_at,
			last_synced = excluded.last_synced,
			sync_error = excluded.sync_error,
			linux_compatible = excluded.linux_compatible,
			android_compatible = excluded.android_compatible,
			processing_status = excluded.processing_status
	`

	_, err = s.conn.Exec(query,
		r.URL,
		r.Owner,
		r.Name,
		nullString(r.Description),
		nullString(r.Language),
		nullString(r.License),
		nullString(r.DefaultBranch),
		r.Stars,
		r.Forks,
		r.Watchers,
		r.OpenIssues,
		nullTime(r.CreatedAt),
		nullTime(r.UpdatedAt),
		nullTime(r.PushedAt),
		nullTime(r.LastSynced),
		nullString(r.SyncError),
		boolInt(r.LinuxCompatible),
		boolInt(r.AndroidCompatible),
		string(r.State),
		string(r.ProcessingStatus),
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert record %s: %w", r.URL, err)
	}

	s.logger.Debug("Upserted record", map[string]interface{}{
		"url":     r.URL,
		"created": !exists,
	})

	return !exists, nil
}

// SetManifest attaches the parsed manifest artifacts to a record. The
// manifest text is stored zstd-compressed.
func (s *Store) SetManifest(url, manifestText, toolsVersion string, dependenciesCount int) error {
	result, err := s.conn.Exec(`
		UPDATE repositories SET
			has_manifest = 1,
			manifest_zstd = ?,
			tools_version = ?,
			dependencies_count = ?
		WHERE url = ?
	`, compressManifest(manifestText), nullString(toolsVersion), dependenciesCount, url)
	if err != nil {
		return fmt.Errorf("failed to attach manifest for %s: %w", url, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("record not found: %s", url)
	}
	return nil
}

// SetProcessingStatus updates a record's pipeline status.
func (s *Store) SetProcessingStatus(url string, status ProcessingStatus) error {
	result, err := s.conn.Exec(
		"UPDATE repositories SET processing_status = ? WHERE url = ?",
		string(status), url,
	)
	if err != nil {
		return fmt.Errorf("failed to update processing status for %s: %w", url, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("record not found: %s", url)
	}
	return nil
}

// GetByURL retrieves a record by its URL. A missing record returns
// (nil, nil).
func (s *Store) GetByURL(url string) (*Record, error) {
	row := s.conn.QueryRow(
		fmt.Sprintf("SELECT %s FROM repositories WHERE url = ?", recordColumns), url)
	return scanRecord(row.Scan)
}

// GetByOwnerRepo retrieves a record by its owner/repo identity. A missing
// record returns (nil, nil).
func (s *Store) GetByOwnerRepo(owner, repo string) (*Record, error) {
	row := s.conn.QueryRow(
		fmt.Sprintf("SELECT %s FROM repositories WHERE owner = ? AND name = ?", recordColumns),
		owner, repo)
	return scanRecord(row.Scan)
}

// List retrieves records in insertion order. With onlyCompleted set, only
// records whose processing finished are returned.
func (s *Store) List(onlyCompleted bool) ([]*Record, error) {
	query := fmt.Sprintf("SELECT %s FROM repositories", recordColumns)
	if onlyCompleted {
		query += " WHERE processing_status = 'completed'"
	}
	query += " ORDER BY id ASC"

	rows, err := s.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}
	return records, nil
}

// Count returns the number of tracked records.
func (s *Store) Count() (int, error) {
	var count int
	if err := s.conn.QueryRow("SELECT COUNT(*) FROM repositories").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// CountByState groups the record count by curation state.
func (s *Store) CountByState() (map[PackageState]int, error) {
	rows, err := s.conn.Query("SELECT state, COUNT(*) FROM repositories GROUP BY state")
	if err != nil {
		return nil, fmt.Errorf("failed to count by state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[PackageState]int)
	for rows.Next() {
		var state string
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, err
		}
		counts[PackageState(state)] = count
	}
	return counts, rows.Err()
}

// CountByProcessingStatus groups the record count by pipeline status.
func (s *Store) CountByProcessingStatus() (map[ProcessingStatus]int, error) {
	rows, err := s.conn.Query("SELECT processing_status, COUNT(*) FROM repositories GROUP BY processing_status")
	if err != nil {
		return nil, fmt.Errorf("failed to count by processing status: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[ProcessingStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[ProcessingStatus(status)] = count
	}
	return counts, rows.Err()
}

// scanRecord scans one repositories row. The scan func signature is shared
// by sql.Row and sql.Rows.
func scanRecord(scan func(dest ...interface{}) error) (*Record, error) {
	var r Record
	var description, language, license, defaultBranch sql.NullString
	var createdAt, updatedAt, pushedAt, lastSynced sql.NullString
	var syncError, toolsVersion sql.NullString
	var manifestBlob []byte
	var hasManifest, linuxCompatible, androidCompatible int
	var state, processingStatus string

	err := scan(
		&r.ID,
		&r.URL,
		&r.Owner,
		&r.Name,
		&description,
		&language,
		&license,
		&defaultBranch,
		&r.Stars,
		&r.Forks,
		&r.Watchers,
		&r.OpenIssues,
		&createdAt,
		&updatedAt,
		&pushedAt,
		&lastSynced,
		&syncError,
		&hasManifest,
		&manifestBlob,
		&toolsVersion,
		&r.DependenciesCount,
		&linuxCompatible,
		&androidCompatible,
		&state,
		&processingStatus,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}

	r.Description = description.String
	r.Language = language.String
	r.License = license.String
	r.DefaultBranch = defaultBranch.String
	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)
	r.PushedAt = parseTime(pushedAt)
	r.LastSynced = parseTime(lastSynced)
	r.SyncError = syncError.String
	r.HasManifest = hasManifest != 0
	r.ToolsVersion = toolsVersion.String
	r.LinuxCompatible = linuxCompatible != 0
	r.AndroidCompatible = androidCompatible != 0
	r.State = PackageState(state)
	r.ProcessingStatus = ProcessingStatus(processingStatus)

	manifest, err := decompressManifest(manifestBlob)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", r.URL, err)
	}
	r.ManifestText = manifest

	return &r, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
