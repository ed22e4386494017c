package constants

// Field limits, measured after trimming.
const (
	TaskTitleMaxLength       = 200
	TaskDescriptionMaxLength = 1000
	CategoryNameMaxLength    = 50
)

// View selects which slice of tasks the UI presents. Selecting a category
// forces ViewCategory; selecting any other view clears the category.
type View string

const (
	ViewAll       View = "all"
	ViewToday     View = "today"
	ViewCompleted View = "completed"
	ViewCategory  View = "category"
)

// Themes persisted under SettingTheme.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Setting keys.
const (
	SettingTheme         = "theme"
	SettingSchemaVersion = "schema_version"
)

// SchemaVersion gates store migrations; bump it whenever index definitions
// change and handle the transition in database.migrateFrom.
const SchemaVersion = 1

// DefaultDBFileName is the on-device database file created under the data
// directory when the config does not name a path.
const DefaultDBFileName = "taskvault.db"
