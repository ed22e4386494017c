package backup

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/aoyama/taskvault/internal/constants"
	"github.com/aoyama/taskvault/internal/database"
	"github.com/aoyama/taskvault/internal/faults"
	"github.com/aoyama/taskvault/internal/models"
	"github.com/aoyama/taskvault/internal/repository"
)

// BackupTestSuite drives export/import against a real in-memory store
type BackupTestSuite struct {
	suite.Suite
	db         *gorm.DB
	tasks      repository.TaskRepository
	categories repository.CategoryRepository
}

// SetupTest runs before each test
func (suite *BackupTestSuite) SetupTest() {
	db, err := database.Open(database.MemoryDSN)
	suite.Require().NoError(err)
	suite.Require().NoError(database.Migrate(db))
	suite.Require().NoError(database.Seed(db))

	suite.db = db
	suite.tasks = repository.NewTaskRepository(db)
	suite.categories = repository.NewCategoryRepository(db)
}

// TearDownTest runs after each test
func (suite *BackupTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *BackupTestSuite) populate() {
	_, err := suite.tasks.Add(models.Task{Title: "Buy groceries", Tags: models.Tags{"errands"}, CategoryID: "personal"})
	suite.Require().NoError(err)
	_, err = suite.tasks.Add(models.Task{Title: "Quarterly report", CategoryID: "work", Priority: models.PriorityHigh})
	suite.Require().NoError(err)
}

func (suite *BackupTestSuite) taskByID(tasks []models.Task, id string) *models.Task {
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i]
		}
	}
	return nil
}

func (suite *BackupTestSuite) TestExport_DocumentShape() {
	suite.populate()

	var buf bytes.Buffer
	doc, err := Export(suite.db, &buf)
	suite.Require().NoError(err)

	assert.Equal(suite.T(), DocumentVersion, doc.Version)
	assert.NotEmpty(suite.T(), doc.ExportDate)
	assert.Len(suite.T(), doc.Tasks, 2)
	assert.Len(suite.T(), doc.Categories, 4)
	assert.NotEmpty(suite.T(), doc.Settings)

	out := buf.String()
	assert.Contains(suite.T(), out, `"version": 1`)
	assert.Contains(suite.T(), out, `"exportDate"`)
	assert.Contains(suite.T(), out, `"Buy groceries"`)
}

func (suite *BackupTestSuite) TestRoundTrip_RestoresEqualCollections() {
	suite.populate()

	before, err := suite.tasks.GetAll()
	suite.Require().NoError(err)
	beforeCats, err := suite.categories.GetAll()
	suite.Require().NoError(err)

	var buf bytes.Buffer
	_, err = Export(suite.db, &buf)
	suite.Require().NoError(err)

	_, err = Import(suite.db, &buf)
	suite.Require().NoError(err)

	after, err := suite.tasks.GetAll()
	suite.Require().NoError(err)
	suite.Require().Len(after, len(before))
	for _, want := range before {
		got := suite.taskByID(after, want.ID)
		suite.Require().NotNil(got)
		assert.Equal(suite.T(), want.Title, got.Title)
		assert.Equal(suite.T(), want.Priority, got.Priority)
		assert.Equal(suite.T(), want.CategoryID, got.CategoryID)
		assert.Equal(suite.T(), want.Tags, got.Tags)
		assert.Equal(suite.T(), want.CreatedAt, got.CreatedAt)
		assert.Equal(suite.T(), want.UpdatedAt, got.UpdatedAt)
	}

	afterCats, err := suite.categories.GetAll()
	suite.Require().NoError(err)
	assert.Equal(suite.T(), beforeCats, afterCats)
}

func (suite *BackupTestSuite) TestImport_MissingCategoriesRejectedWithoutMutation() {
	suite.populate()
	before, err := suite.tasks.GetAll()
	suite.Require().NoError(err)

	doc := `{"version": 1, "exportDate": "2024-01-15T10:00:00Z", "tasks": []}`
	_, err = Import(suite.db, strings.NewReader(doc))
	assert.True(suite.T(), faults.IsCode(err, faults.CodeImport))

	after, err := suite.tasks.GetAll()
	suite.Require().NoError(err)
	assert.Equal(suite.T(), before, after, "store must be untouched after a rejected import")
}

func (suite *BackupTestSuite) TestImport_NullCollectionsRejectedWithoutMutation() {
	suite.populate()
	before, err := suite.tasks.GetAll()
	suite.Require().NoError(err)

	doc := `{"version": 1, "tasks": null, "categories": null}`
	_, err = Import(suite.db, strings.NewReader(doc))
	assert.True(suite.T(), faults.IsCode(err, faults.CodeImport))

	doc = `{"version": 1, "tasks": null, "categories": []}`
	_, err = Import(suite.db, strings.NewReader(doc))
	assert.True(suite.T(), faults.IsCode(err, faults.CodeImport))

	doc = `{"version": 1, "tasks": [], "categories": null}`
	_, err = Import(suite.db, strings.NewReader(doc))
	assert.True(suite.T(), faults.IsCode(err, faults.CodeImport))

	after, err := suite.tasks.GetAll()
	suite.Require().NoError(err)
	assert.Equal(suite.T(), before, after, "store must be untouched after a rejected import")
}

func (suite *BackupTestSuite) TestImport_MissingVersionRejected() {
	doc := `{"exportDate": "x", "tasks": [], "categories": []}`
	_, err := Import(suite.db, strings.NewReader(doc))
	assert.True(suite.T(), faults.IsCode(err, faults.CodeImport))
}

func (suite *BackupTestSuite) TestImport_UnknownVersionRejected() {
	doc := `{"version": 2, "tasks": [], "categories": []}`
	_, err := Import(suite.db, strings.NewReader(doc))
	assert.True(suite.T(), faults.IsCode(err, faults.CodeImport))
}

func (suite *BackupTestSuite) TestImport_WrongShapeRejected() {
	doc := `{"version": 1, "tasks": {"not": "an array"}, "categories": []}`
	_, err := Import(suite.db, strings.NewReader(doc))
	assert.True(suite.T(), faults.IsCode(err, faults.CodeImport))
}

func (suite *BackupTestSuite) TestImport_RecordMissingIdentityRejected() {
	doc := `{"version": 1, "tasks": [{"id": "t1"}], "categories": []}`
	_, err := Import(suite.db, strings.NewReader(doc))
	assert.True(suite.T(), faults.IsCode(err, faults.CodeImport))

	doc = `{"version": 1, "tasks": [], "categories": [{"id": "c1"}]}`
	_, err = Import(suite.db, strings.NewReader(doc))
	assert.True(suite.T(), faults.IsCode(err, faults.CodeImport))
}

func (suite *BackupTestSuite) TestImport_MidFailureRollsBack() {
	suite.populate()
	before, err := suite.tasks.GetAll()
	suite.Require().NoError(err)

	// Duplicate primary keys fail the bulk insert after the clear step; the
	// transaction must roll the clear back.
	doc := `{
		"version": 1,
		"tasks": [
			{"id": "dup", "title": "first"},
			{"id": "dup", "title": "second"}
		],
		"categories": [{"id": "c1", "name": "One"}]
	}`
	_, err = Import(suite.db, strings.NewReader(doc))
	assert.Error(suite.T(), err)

	after, err := suite.tasks.GetAll()
	suite.Require().NoError(err)
	assert.Equal(suite.T(), before, after, "failed import must not leave the store empty")
}

func (suite *BackupTestSuite) TestImport_StripsUnknownKeys() {
	doc := `{
		"version": 1,
		"tasks": [{"id": "t1", "title": "clean", "__proto__": {"polluted": true}}],
		"categories": [{"id": "c1", "name": "One", "constructor": "bad"}],
		"settings": [{"key": "theme", "value": "dark"}]
	}`
	restored, err := Import(suite.db, strings.NewReader(doc))
	suite.Require().NoError(err)
	assert.Len(suite.T(), restored.Tasks, 1)

	var buf bytes.Buffer
	_, err = Export(suite.db, &buf)
	suite.Require().NoError(err)
	assert.NotContains(suite.T(), buf.String(), "__proto__")
	assert.NotContains(suite.T(), buf.String(), "polluted")

	value, ok, err := repository.NewSettingRepository(suite.db).Get("theme")
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), "dark", value)
}

func (suite *BackupTestSuite) TestImport_SchemaVersionSettingNotOverwritten() {
	doc := `{
		"version": 1,
		"tasks": [],
		"categories": [{"id": "c1", "name": "One"}],
		"settings": [
			{"key": "schema_version", "value": "garbage"},
			{"key": "theme", "value": "dark"}
		]
	}`
	_, err := Import(suite.db, strings.NewReader(doc))
	suite.Require().NoError(err)

	settings := repository.NewSettingRepository(suite.db)
	value, ok, err := settings.Get(constants.SettingSchemaVersion)
	suite.Require().NoError(err)
	suite.Require().True(ok)
	assert.Equal(suite.T(), "1", value, "recorded schema version belongs to the store, not the document")

	value, ok, err = settings.Get(constants.SettingTheme)
	suite.Require().NoError(err)
	suite.Require().True(ok)
	assert.Equal(suite.T(), "dark", value)

	// The next migration run still reads a usable version.
	assert.NoError(suite.T(), database.Migrate(suite.db))
}

func TestBackupTestSuite(t *testing.T) {
	suite.Run(t, new(BackupTestSuite))
}
