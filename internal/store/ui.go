package store

import (
	"context"
	"sync"
)

// Ключи сохраняемых настроек интерфейса.
const (
	prefTheme   = "theme"
	prefSidebar = "sidebar_open"
)

// PreferenceStore хранит настройки интерфейса между запусками приложения.
type PreferenceStore interface {
	Preference(ctx context.Context, key string) (string, error)
	SavePreference(ctx context.Context, key, value string) error
}

// UI хранит состояние интерфейса: боковая панель, тема, модальные окна
// и панель фильтров. Бизнес-логики здесь нет.
type UI struct {
	mu    sync.RWMutex
	prefs PreferenceStore

	sidebarOpen     bool
	theme           string
	filterPanelOpen bool
	activeModal     string
}

// NewUI создаёт хранилище состояния интерфейса. prefs может быть nil,
// тогда настройки не сохраняются.
func NewUI(prefs PreferenceStore) *UI {
	return &UI{
		prefs:       prefs,
		sidebarOpen: true,
		theme:       "light",
	}
}

// Load восстанавливает сохранённые настройки интерфейса.
func (s *UI) Load(ctx context.Context) error {
	if s.prefs == nil {
		return nil
	}

	theme, err := s.prefs.Preference(ctx, prefTheme)
	if err != nil {
		return err
	}
	sidebar, err := s.prefs.Preference(ctx, prefSidebar)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if theme != "" {
		s.theme = theme
	}
	if sidebar != "" {
		s.sidebarOpen = sidebar == "true"
	}
	s.mu.Unlock()

	return nil
}

// ToggleSidebar переключает видимость боковой панели и сохраняет её.
func (s *UI) ToggleSidebar(ctx context.Context) {
	s.mu.Lock()
	s.sidebarOpen = !s.sidebarOpen
	open := s.sidebarOpen
	s.mu.Unlock()

	if s.prefs != nil {
		value := "false"
		if open {
			value = "true"
		}
		_ = s.prefs.SavePreference(ctx, prefSidebar, value)
	}
}

// SetTheme устанавливает тему интерфейса и сохраняет её.
func (s *UI) SetTheme(ctx context.Context, theme string) {
	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()

	if s.prefs != nil {
		_ = s.prefs.SavePreference(ctx, prefTheme, theme)
	}
}

// OpenModal делает активным модальное окно с указанным именем.
func (s *UI) OpenModal(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeModal = name
}

// CloseModal закрывает активное модальное окно.
func (s *UI) CloseModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeModal = ""
}

// ToggleFilterPanel переключает видимость панели фильтров.
func (s *UI) ToggleFilterPanel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filterPanelOpen = !s.filterPanelOpen
}

// SidebarOpen сообщает, открыта ли боковая панель.
func (s *UI) SidebarOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sidebarOpen
}

// Theme возвращает текущую тему интерфейса.
func (s *UI) Theme() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// FilterPanelOpen сообщает, открыта ли панель фильтров.
func (s *UI) FilterPanelOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterPanelOpen
}

// ActiveModal возвращает имя активного модального окна или пустую строку.
func (s *UI) ActiveModal() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeModal
}
