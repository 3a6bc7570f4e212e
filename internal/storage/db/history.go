package db

import (
	"database/sql"
	"fmt"
	"time"
)

// InstallRecord is one mod written to disk by an install, update or import
type InstallRecord struct {
	OperationID     string
	UniqueName      string
	Version         string
	PreviousVersion string // Empty on first install
	SourceURL       string // Download URL or local archive path
	Checksum        string // MD5 of the archive
	InstalledAt     time.Time
}

// RecordInstall appends an install record
func (d *DB) RecordInstall(rec *InstallRecord) error {
	installedAt := rec.InstalledAt
	if installedAt.IsZero() {
		installedAt = time.Now()
	}

	_, err := d.Exec(`
		INSERT INTO install_history (operation_id, unique_name, version, previous_version, source_url, checksum, installed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.OperationID, rec.UniqueName, rec.Version, nullString(rec.PreviousVersion), nullString(rec.SourceURL), nullString(rec.Checksum), installedAt)
	if err != nil {
		return fmt.Errorf("recording install: %w", err)
	}
	return nil
}

// GetHistory returns all records for a mod, newest first
func (d *DB) GetHistory(uniqueName string) ([]InstallRecord, error) {
	return d.queryRecords(`
		SELECT operation_id, unique_name, version, previous_version, source_url, checksum, installed_at
		FROM install_history
		WHERE unique_name = ?
		ORDER BY installed_at DESC, id DESC
	`, uniqueName)
}

// GetOperation returns every record written by one operation
func (d *DB) GetOperation(operationID string) ([]InstallRecord, error) {
	return d.queryRecords(`
		SELECT operation_id, unique_name, version, previous_version, source_url, checksum, installed_at
		FROM install_history
		WHERE operation_id = ?
		ORDER BY id ASC
	`, operationID)
}

// GetRecent returns the newest records across all mods
func (d *DB) GetRecent(limit int) ([]InstallRecord, error) {
	return d.queryRecords(`
		SELECT operation_id, unique_name, version, previous_version, source_url, checksum, installed_at
		FROM install_history
		ORDER BY installed_at DESC, id DESC
		LIMIT ?
	`, limit)
}

func (d *DB) queryRecords(query string, args ...any) ([]InstallRecord, error) {
	rows, err := d.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying install history: %w", err)
	}
	defer rows.Close()

	var records []InstallRecord
	for rows.Next() {
		var rec InstallRecord
		var prevVersion, sourceURL, checksum sql.NullString
		if err := rows.Scan(&rec.OperationID, &rec.UniqueName, &rec.Version, &prevVersion, &sourceURL, &checksum, &rec.InstalledAt); err != nil {
			return nil, fmt.Errorf("scanning install record: %w", err)
		}
		rec.PreviousVersion = prevVersion.String
		rec.SourceURL = sourceURL.String
		rec.Checksum = checksum.String
		records = append(records, rec)
	}

	return records, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
