package state

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/aoyama/taskvault/internal/constants"
	"github.com/aoyama/taskvault/internal/database"
	"github.com/aoyama/taskvault/internal/repository"
)

// stubPrompt is a canned install-prompt handle.
type stubPrompt struct {
	accepted bool
	err      error
	calls    int
}

func (p *stubPrompt) Prompt() (bool, error) {
	p.calls++
	return p.accepted, p.err
}

// AppStateTestSuite drives AppState over a real settings repository
type AppStateTestSuite struct {
	suite.Suite
	db       *gorm.DB
	settings repository.SettingRepository
	applied  []string
	state    *AppState
}

// SetupTest runs before each test
func (suite *AppStateTestSuite) SetupTest() {
	db, err := database.Open(database.MemoryDSN)
	suite.Require().NoError(err)
	suite.Require().NoError(database.Migrate(db))

	suite.db = db
	suite.settings = repository.NewSettingRepository(db)
	suite.applied = nil
	suite.state = NewAppState(suite.settings, func(theme string) {
		suite.applied = append(suite.applied, theme)
	})
}

// TearDownTest runs after each test
func (suite *AppStateTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *AppStateTestSuite) TestSetTheme_PersistsAndApplies() {
	suite.Require().NoError(suite.state.SetTheme(constants.ThemeDark))

	assert.Equal(suite.T(), constants.ThemeDark, suite.state.Theme())
	assert.True(suite.T(), suite.state.IsDarkMode())
	assert.Equal(suite.T(), []string{"dark"}, suite.applied)

	value, ok, err := suite.settings.Get(constants.SettingTheme)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), "dark", value)
}

func (suite *AppStateTestSuite) TestToggleTheme() {
	suite.Require().NoError(suite.state.ToggleTheme())
	assert.Equal(suite.T(), constants.ThemeDark, suite.state.Theme())
	suite.Require().NoError(suite.state.ToggleTheme())
	assert.Equal(suite.T(), constants.ThemeLight, suite.state.Theme())
}

func (suite *AppStateTestSuite) TestLoadTheme_SavedValueWins() {
	suite.Require().NoError(suite.settings.Put(constants.SettingTheme, constants.ThemeDark))

	suite.Require().NoError(suite.state.LoadTheme(false))
	assert.Equal(suite.T(), constants.ThemeDark, suite.state.Theme())
}

func (suite *AppStateTestSuite) TestLoadTheme_FallsBackToSystemPreference() {
	suite.Require().NoError(suite.state.LoadTheme(true))
	assert.Equal(suite.T(), constants.ThemeDark, suite.state.Theme())
}

func (suite *AppStateTestSuite) TestApplySystemColorScheme_FollowsPreferenceWhenUnsaved() {
	suite.Require().NoError(suite.state.ApplySystemColorScheme(true))
	assert.Equal(suite.T(), constants.ThemeDark, suite.state.Theme())
	assert.Equal(suite.T(), []string{"dark"}, suite.applied)

	// Never persisted: the preference stays a fallback.
	_, ok, err := suite.settings.Get(constants.SettingTheme)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), ok)
}

func (suite *AppStateTestSuite) TestApplySystemColorScheme_SavedThemeWins() {
	suite.Require().NoError(suite.state.SetTheme(constants.ThemeLight))

	suite.Require().NoError(suite.state.ApplySystemColorScheme(true))
	assert.Equal(suite.T(), constants.ThemeLight, suite.state.Theme())
}

func (suite *AppStateTestSuite) TestViewAndCategoryMutuallyExclusive() {
	suite.state.SetCategory("work")
	assert.Equal(suite.T(), constants.ViewCategory, suite.state.CurrentView())
	assert.Equal(suite.T(), "work", suite.state.CurrentCategory())

	suite.state.SetView(constants.ViewToday)
	assert.Equal(suite.T(), constants.ViewToday, suite.state.CurrentView())
	assert.Empty(suite.T(), suite.state.CurrentCategory())
}

func (suite *AppStateTestSuite) TestOnlineAndSidebarFlags() {
	assert.True(suite.T(), suite.state.Online())
	suite.state.SetOnline(false)
	assert.False(suite.T(), suite.state.Online())

	assert.True(suite.T(), suite.state.SidebarOpen())
	suite.state.ToggleSidebar()
	assert.False(suite.T(), suite.state.SidebarOpen())
}

func (suite *AppStateTestSuite) TestSearchQuery() {
	suite.state.SetSearchQuery("groceries")
	assert.Equal(suite.T(), "groceries", suite.state.SearchQuery())
}

func (suite *AppStateTestSuite) TestInstallPWA_AcceptedClearsSlot() {
	prompt := &stubPrompt{accepted: true}
	suite.state.SetInstallPrompt(prompt)
	assert.True(suite.T(), suite.state.InstallAvailable())

	accepted, err := suite.state.InstallPWA()
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), accepted)
	assert.Equal(suite.T(), 1, prompt.calls)
	assert.False(suite.T(), suite.state.InstallAvailable())
}

func (suite *AppStateTestSuite) TestInstallPWA_DismissedAlsoClearsSlot() {
	suite.state.SetInstallPrompt(&stubPrompt{accepted: false})

	accepted, err := suite.state.InstallPWA()
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), accepted)
	assert.False(suite.T(), suite.state.InstallAvailable())
}

func (suite *AppStateTestSuite) TestInstallPWA_ErrorCapturedAndSlotCleared() {
	boom := errors.New("prompt failed")
	suite.state.SetInstallPrompt(&stubPrompt{err: boom})

	accepted, err := suite.state.InstallPWA()
	assert.False(suite.T(), accepted)
	assert.ErrorIs(suite.T(), err, boom)
	assert.ErrorIs(suite.T(), suite.state.LastError(), boom)
	assert.False(suite.T(), suite.state.InstallAvailable())
}

func (suite *AppStateTestSuite) TestInstallPWA_NoPromptIsNoOp() {
	accepted, err := suite.state.InstallPWA()
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), accepted)
}

func TestAppStateTestSuite(t *testing.T) {
	suite.Run(t, new(AppStateTestSuite))
}
