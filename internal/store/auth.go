package store

import (
	"context"
	"errors"
	"sync"

	"github.com/mmeshcher/picker-system/internal/api"
	"github.com/mmeshcher/picker-system/internal/localdb"
	"github.com/mmeshcher/picker-system/internal/model"
	"github.com/mmeshcher/picker-system/internal/validation"
)

// Ошибки хранилища сессии.
var (
	// ErrRoleNotAllowed возвращается при входе с ролью вне picker/admin.
	ErrRoleNotAllowed = errors.New("role is not allowed")
	// ErrInvalidForm возвращается при ошибках валидации формы входа.
	ErrInvalidForm = errors.New("login form is invalid")
	// ErrNoSession возвращается при восстановлении без сохранённого токена.
	ErrNoSession = localdb.ErrNoSession
)

// AuthAPI определяет операции API, используемые хранилищем сессии.
type AuthAPI interface {
	SetToken(token string)
	Login(ctx context.Context, employeeID, password string) (*api.LoginResult, error)
	Profile(ctx context.Context) (*model.User, error)
	UpdateAvailability(ctx context.Context, available bool) (*model.User, error)
}

// SessionStore хранит токен сессии между запусками приложения.
type SessionStore interface {
	Token(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// Auth владеет токеном сессии, текущим пользователем и флагом готовности
// принимать заказы. Доступ разрешён только ролям picker и admin.
type Auth struct {
	mu       sync.RWMutex
	api      AuthAPI
	sessions SessionStore
	notices  *Notices

	token        string
	user         *model.User
	availability bool
	fieldErrs    validation.FieldErrors
	loading      bool
	err          string

	onLogout func()
}

// NewAuth создаёт хранилище сессии.
func NewAuth(client AuthAPI, sessions SessionStore, notices *Notices) *Auth {
	return &Auth{
		api:      client,
		sessions: sessions,
		notices:  notices,
	}
}

// OnLogout регистрирует обработчик, вызываемый при сбросе сессии.
// Используется для очистки остальных хранилищ.
func (s *Auth) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = fn
}

// Login выполняет вход. Ошибки формы не приводят к сетевому запросу
// и доступны через FieldErrors.
func (s *Auth) Login(ctx context.Context, employeeID, password string) error {
	if errs := validation.ValidateCredentials(employeeID, password); !errs.Valid() {
		s.mu.Lock()
		s.fieldErrs = errs
		s.mu.Unlock()
		return ErrInvalidForm
	}

	s.mu.Lock()
	s.fieldErrs = nil
	s.loading = true
	s.mu.Unlock()

	res, err := s.api.Login(ctx, employeeID, password)
	if err != nil {
		s.mu.Lock()
		s.loading = false
		s.err = err.Error()
		s.mu.Unlock()
		s.notices.Publish(NoticeError, err.Error())
		return err
	}

	if !res.User.Role.IsAllowed() {
		s.mu.Lock()
		s.loading = false
		s.err = ErrRoleNotAllowed.Error()
		s.mu.Unlock()
		return ErrRoleNotAllowed
	}

	s.api.SetToken(res.Token)
	if s.sessions != nil {
		if err := s.sessions.SaveToken(ctx, res.Token); err != nil {
			s.notices.Publish(NoticeError, "session not persisted: "+err.Error())
		}
	}

	user := res.User
	s.mu.Lock()
	s.token = res.Token
	s.user = &user
	s.availability = user.IsAvailable
	s.loading = false
	s.err = ""
	s.mu.Unlock()

	s.notices.Publish(NoticeSuccess, "signed in as "+user.Name)
	return nil
}

// Restore восстанавливает сессию по сохранённому токену. Роль всегда
// перепроверяется свежим запросом профиля, локальным данным доверия нет.
func (s *Auth) Restore(ctx context.Context) error {
	if s.sessions == nil {
		return ErrNoSession
	}

	token, err := s.sessions.Token(ctx)
	if err != nil {
		return err
	}

	s.api.SetToken(token)

	user, err := s.api.Profile(ctx)
	if err != nil {
		if !errors.Is(err, api.ErrUnauthorized) {
			// Токен остаётся в локальном хранилище: сессия ещё может быть
			// живой, а из памяти клиента он убирается до успешной проверки.
			s.api.SetToken("")
		}
		return err
	}

	if !user.Role.IsAllowed() {
		s.ForceLogout()
		return ErrRoleNotAllowed
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.availability = user.IsAvailable
	s.err = ""
	s.mu.Unlock()

	return nil
}

// SetAvailability меняет готовность принимать новые заказы.
func (s *Auth) SetAvailability(ctx context.Context, available bool) error {
	user, err := s.api.UpdateAvailability(ctx, available)
	if err != nil {
		s.notices.Publish(NoticeError, err.Error())
		return err
	}

	s.mu.Lock()
	s.user = user
	s.availability = user.IsAvailable
	s.mu.Unlock()

	if available {
		s.notices.Publish(NoticeSuccess, "you are available for new orders")
	} else {
		s.notices.Publish(NoticeSuccess, "you are no longer taking new orders")
	}
	return nil
}

// Logout сбрасывает сессию по запросу пользователя.
func (s *Auth) Logout() {
	s.ForceLogout()
	s.notices.Publish(NoticeSuccess, "signed out")
}

// ForceLogout переводит приложение в неаутентифицированное состояние:
// токен удаляется из памяти и из локального хранилища. Вызывается также
// обработчиком ответа 401.
func (s *Auth) ForceLogout() {
	s.api.SetToken("")
	if s.sessions != nil {
		_ = s.sessions.ClearToken(context.Background())
	}

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.availability = false
	s.fieldErrs = nil
	s.loading = false
	s.err = ""
	hook := s.onLogout
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
}

// IsAuthenticated сообщает, установлена ли сессия.
func (s *Auth) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// User возвращает копию текущего пользователя или nil.
func (s *Auth) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	cp := *s.user
	return &cp
}

// Token возвращает текущий токен сессии.
func (s *Auth) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Availability возвращает флаг готовности принимать заказы.
func (s *Auth) Availability() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.availability
}

// FieldErrors возвращает ошибки валидации последней отправки формы входа.
func (s *Auth) FieldErrors() validation.FieldErrors {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fieldErrs
}

// Loading сообщает, выполняется ли сейчас запрос входа.
func (s *Auth) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err возвращает текст последней ошибки или пустую строку.
func (s *Auth) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}
