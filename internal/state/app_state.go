package state

import (
	"sync"

	"github.com/aoyama/taskvault/internal/constants"
	"github.com/aoyama/taskvault/internal/repository"
)

// InstallPrompt is a deferred platform install handle. Prompt shows the
// prompt and reports whether the user accepted.
type InstallPrompt interface {
	Prompt() (accepted bool, err error)
}

// ThemeApplier pushes a theme change into the presentation layer, the
// equivalent of setting a global presentation attribute. A nil applier is
// allowed.
type ThemeApplier func(theme string)

// AppState owns application-level state: theme, current view and category
// selection, search query, connectivity flag, sidebar and the install-prompt
// slot. Unlike the collection containers it holds scalars, so its actions
// skip the loading protocol; theme persistence failures are still captured.
type AppState struct {
	settings   repository.SettingRepository
	applyTheme ThemeApplier

	mu              sync.RWMutex
	theme           string
	currentView     constants.View
	currentCategory string
	searchQuery     string
	online          bool
	sidebarOpen     bool
	installPrompt   InstallPrompt
	lastErr         error
}

// NewAppState creates an AppState over the settings repository. applyTheme
// may be nil when no presentation layer is attached.
func NewAppState(settings repository.SettingRepository, applyTheme ThemeApplier) *AppState {
	return &AppState{
		settings:    settings,
		applyTheme:  applyTheme,
		theme:       constants.ThemeLight,
		currentView: constants.ViewAll,
		online:      true,
		sidebarOpen: true,
	}
}

// Theme returns the active theme.
func (s *AppState) Theme() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// IsDarkMode reports whether the dark theme is active.
func (s *AppState) IsDarkMode() bool {
	return s.Theme() == constants.ThemeDark
}

// LastError returns the error captured by the most recent failing action.
func (s *AppState) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// SetTheme switches the theme, persists it to the settings collection and
// pushes it through the presentation hook. The in-memory switch holds even
// when persistence fails; the failure is captured and returned.
func (s *AppState) SetTheme(theme string) error {
	s.mu.Lock()
	s.theme = theme
	applier := s.applyTheme
	s.mu.Unlock()

	if applier != nil {
		applier(theme)
	}

	err := s.settings.Put(constants.SettingTheme, theme)
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	return err
}

// ToggleTheme flips between light and dark.
func (s *AppState) ToggleTheme() error {
	if s.Theme() == constants.ThemeLight {
		return s.SetTheme(constants.ThemeDark)
	}
	return s.SetTheme(constants.ThemeLight)
}

// LoadTheme applies the persisted theme, falling back to the platform
// color-scheme preference when nothing was saved yet.
func (s *AppState) LoadTheme(systemPrefersDark bool) error {
	saved, ok, err := s.settings.Get(constants.SettingTheme)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		return err
	}
	if ok {
		return s.SetTheme(saved)
	}
	if systemPrefersDark {
		return s.SetTheme(constants.ThemeDark)
	}
	return s.SetTheme(constants.ThemeLight)
}

// ApplySystemColorScheme mirrors a platform color-scheme change. An explicit
// saved theme wins; the preference drives the theme only while nothing has
// been saved, and is never persisted itself.
func (s *AppState) ApplySystemColorScheme(prefersDark bool) error {
	_, saved, err := s.settings.Get(constants.SettingTheme)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		return err
	}
	if saved {
		return nil
	}

	theme := constants.ThemeLight
	if prefersDark {
		theme = constants.ThemeDark
	}
	s.mu.Lock()
	s.theme = theme
	applier := s.applyTheme
	s.mu.Unlock()
	if applier != nil {
		applier(theme)
	}
	return nil
}

// CurrentView returns the active view selector.
func (s *AppState) CurrentView() constants.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentView
}

// CurrentCategory returns the selected category id, empty when none.
func (s *AppState) CurrentCategory() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentCategory
}

// SetView switches views and clears any category selection; view and
// selected category are mutually exclusive.
func (s *AppState) SetView(view constants.View) {
	s.mu.Lock()
	s.currentView = view
	s.currentCategory = ""
	s.mu.Unlock()
}

// SetCategory selects a category, which forces the category view.
func (s *AppState) SetCategory(categoryID string) {
	s.mu.Lock()
	s.currentCategory = categoryID
	s.currentView = constants.ViewCategory
	s.mu.Unlock()
}

// SearchQuery returns the free-text search query.
func (s *AppState) SearchQuery() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchQuery
}

// SetSearchQuery stores the free-text search query.
func (s *AppState) SetSearchQuery(query string) {
	s.mu.Lock()
	s.searchQuery = query
	s.mu.Unlock()
}

// Online reports the mirrored connectivity flag.
func (s *AppState) Online() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.online
}

// SetOnline mirrors a platform connectivity change.
func (s *AppState) SetOnline(online bool) {
	s.mu.Lock()
	s.online = online
	s.mu.Unlock()
}

// SidebarOpen reports the sidebar flag.
func (s *AppState) SidebarOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sidebarOpen
}

// ToggleSidebar flips the sidebar flag.
func (s *AppState) ToggleSidebar() {
	s.mu.Lock()
	s.sidebarOpen = !s.sidebarOpen
	s.mu.Unlock()
}

// SetInstallPrompt captures (or with nil, clears) the deferred install handle.
func (s *AppState) SetInstallPrompt(prompt InstallPrompt) {
	s.mu.Lock()
	s.installPrompt = prompt
	s.mu.Unlock()
}

// InstallAvailable reports whether an install handle is captured.
func (s *AppState) InstallAvailable() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.installPrompt != nil
}

// InstallPWA invokes the captured install handle and reports whether the
// user accepted. The slot is cleared on every terminal outcome, acceptance,
// dismissal or error alike; with no handle captured it reports false.
func (s *AppState) InstallPWA() (bool, error) {
	s.mu.Lock()
	prompt := s.installPrompt
	s.installPrompt = nil
	s.mu.Unlock()

	if prompt == nil {
		return false, nil
	}

	accepted, err := prompt.Prompt()
	if err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		return false, err
	}
	return accepted, nil
}
