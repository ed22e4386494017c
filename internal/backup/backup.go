// Package backup serializes the full store to a portable JSON document and
// restores it. Import validates the whole document before any store mutation
// and applies the swap inside one transaction, so a mid-import failure can
// never leave the store empty.
package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aoyama/taskvault/internal/constants"
	"github.com/aoyama/taskvault/internal/faults"
	"github.com/aoyama/taskvault/internal/models"
)

// DocumentVersion is the only document version currently defined.
const DocumentVersion = 1

// Document is the portable export shape: one versioned snapshot of the three
// collections.
type Document struct {
	Version    int               `json:"version"`
	ExportDate string            `json:"exportDate"`
	Tasks      []models.Task     `json:"tasks"`
	Categories []models.Category `json:"categories"`
	Settings   []models.Setting  `json:"settings"`
}

// rawDocument defers collection decoding so structural validation can reject
// a malformed document with a precise message before any record is touched.
type rawDocument struct {
	Version    *json.Number    `json:"version"`
	ExportDate string          `json:"exportDate"`
	Tasks      json.RawMessage `json:"tasks"`
	Categories json.RawMessage `json:"categories"`
	Settings   json.RawMessage `json:"settings"`
}

// Export snapshots the store into w as an indented JSON document. The
// snapshot is one logical read pass, best effort across collections.
func Export(db *gorm.DB, w io.Writer) (*Document, error) {
	doc := &Document{
		Version:    DocumentVersion,
		ExportDate: time.Now().Format(time.RFC3339),
		Tasks:      []models.Task{},
		Categories: []models.Category{},
		Settings:   []models.Setting{},
	}

	if err := db.Find(&doc.Tasks).Error; err != nil {
		return nil, faults.Storage("export tasks", err)
	}
	if err := db.Order("sort_order ASC").Find(&doc.Categories).Error; err != nil {
		return nil, faults.Storage("export categories", err)
	}
	if err := db.Find(&doc.Settings).Error; err != nil {
		return nil, faults.Storage("export settings", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode backup document: %w", err)
	}
	return doc, nil
}

// ExportFile writes the export document to a timestamped file in dir and
// returns its path.
func ExportFile(db *gorm.DB, dir string) (string, error) {
	path := fmt.Sprintf("%s/todo-backup-%d.json", dir, time.Now().UnixMilli())
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer f.Close()

	if _, err := Export(db, f); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// Import restores a backup document into the store. The tasks and categories
// collections are replaced; settings are upserted when present. The caller
// must reload any state containers afterwards.
func Import(db *gorm.DB, r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, faults.Wrap(faults.CodeImport, "failed to read backup document", err)
	}

	doc, err := Validate(data)
	if err != nil {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Task{}).Error; err != nil {
			return faults.Storage("clear tasks", err)
		}
		if err := tx.Where("1 = 1").Delete(&models.Category{}).Error; err != nil {
			return faults.Storage("clear categories", err)
		}

		if len(doc.Tasks) > 0 {
			if err := tx.Create(&doc.Tasks).Error; err != nil {
				return faults.Storage("import tasks", err)
			}
		}
		if len(doc.Categories) > 0 {
			if err := tx.Create(&doc.Categories).Error; err != nil {
				return faults.Storage("import categories", err)
			}
		}
		for _, setting := range doc.Settings {
			// The schema version describes the live store, not the
			// document; a hand-edited value here would break the next
			// migration run.
			if setting.Key == constants.SettingSchemaVersion {
				continue
			}
			s := setting
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value"}),
			}).Create(&s).Error
			if err != nil {
				return faults.Storage("import settings", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// ImportFile restores a backup document from a file path.
func ImportFile(db *gorm.DB, path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, faults.Wrap(faults.CodeImport, "failed to open backup file", err)
	}
	defer f.Close()
	return Import(db, f)
}

// Validate checks the document structure and decodes it into typed records.
// Typed decoding keeps only known fields, which is what strips any hostile
// extra keys a hand-edited document might carry. Nothing is mutated here.
func Validate(data []byte) (*Document, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, faults.Wrap(faults.CodeImport, "backup document is not valid JSON", err)
	}

	if raw.Version == nil {
		return nil, faults.Import("backup document is missing its version")
	}
	version, err := raw.Version.Int64()
	if err != nil || version != DocumentVersion {
		return nil, faults.Import(fmt.Sprintf("unsupported backup version %s", raw.Version.String()))
	}

	doc := &Document{Version: int(version), ExportDate: raw.ExportDate}

	if missingList(raw.Tasks) {
		return nil, faults.Import("backup document is missing its task list")
	}
	if err := json.Unmarshal(raw.Tasks, &doc.Tasks); err != nil {
		return nil, faults.Wrap(faults.CodeImport, "task list is not an array of tasks", err)
	}
	for i, task := range doc.Tasks {
		if task.ID == "" || task.Title == "" {
			return nil, faults.Import(fmt.Sprintf("task %d is missing its id or title", i))
		}
	}

	if missingList(raw.Categories) {
		return nil, faults.Import("backup document is missing its category list")
	}
	if err := json.Unmarshal(raw.Categories, &doc.Categories); err != nil {
		return nil, faults.Wrap(faults.CodeImport, "category list is not an array of categories", err)
	}
	for i, category := range doc.Categories {
		if category.ID == "" || category.Name == "" {
			return nil, faults.Import(fmt.Sprintf("category %d is missing its id or name", i))
		}
	}

	if !missingList(raw.Settings) {
		if err := json.Unmarshal(raw.Settings, &doc.Settings); err != nil {
			return nil, faults.Wrap(faults.CodeImport, "settings list is not an array of settings", err)
		}
	}

	return doc, nil
}

// missingList reports whether a raw collection value is absent or JSON null.
// A null collection must fail validation the same way a missing one does, or
// the replace pass would wipe the store with nothing to put back.
func missingList(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
