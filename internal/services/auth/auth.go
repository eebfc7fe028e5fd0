// Package auth содержит регистрацию и вход по логину и паролю.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/csv-manager/internal/apperr"
	"github.com/magabrotheeeer/csv-manager/internal/lib/jwt"
	"github.com/magabrotheeeer/csv-manager/internal/lib/password"
	"github.com/magabrotheeeer/csv-manager/internal/metrics"
	"github.com/magabrotheeeer/csv-manager/internal/models"
	"github.com/magabrotheeeer/csv-manager/internal/storage/repository"
)

// Публичные сообщения об ошибках.
const (
	MsgUsernameLength     = "Username must be between 3 and 64 characters"
	MsgPasswordLength     = "Password must be between 6 and 128 characters"
	MsgInvalidEmail       = "Invalid email address"
	MsgUsernameTaken      = "Username already exists"
	MsgInvalidCredentials = "invalid username or password"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateLastSignedIn(ctx context.Context, userID int64) error
}

// RegisterInput — данные для регистрации. Name и Email необязательны.
type RegisterInput struct {
	Username string
	Password string
	Name     string
	Email    string
}

// Session — выданный токен сессии и пользователь, которому он принадлежит.
type Session struct {
	Token string
	User  *models.User
}

// Service отвечает за регистрацию, вход и выдачу токенов сессии.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
	metrics  metrics.Recorder
	validate *validator.Validate
	now      func() time.Time
}

// New создает новый экземпляр Service.
func New(users UserRepository, jwtMaker jwt.Maker, rec metrics.Recorder) *Service {
	if rec == nil {
		rec = metrics.Noop{}
	}
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
		metrics:  rec,
		validate: validator.New(),
		now:      time.Now,
	}
}

func (s *Service) validateRegister(in RegisterInput) error {
	if n := utf8.RuneCountInString(in.Username); n < 3 || n > 64 {
		return apperr.Validation(MsgUsernameLength)
	}
	if n := utf8.RuneCountInString(in.Password); n < 6 || n > 128 {
		return apperr.Validation(MsgPasswordLength)
	}
	if in.Email != "" {
		if err := s.validate.Var(in.Email, "email"); err != nil {
			return apperr.Validation(MsgInvalidEmail)
		}
	}
	return nil
}

// Register создаёт локальную учётную запись и выдаёт сессию.
func (s *Service) Register(ctx context.Context, in RegisterInput) (sess *Session, err error) {
	const op = "auth.Register"
	defer func() { s.metrics.RecordAuthAttempt("register", err == nil) }()

	if err := s.validateRegister(in); err != nil {
		return nil, err
	}

	_, err = s.users.GetUserByUsername(ctx, in.Username)
	switch {
	case err == nil:
		return nil, apperr.Conflict(MsgUsernameTaken)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	name := in.Name
	if name == "" {
		name = in.Username
	}
	username := in.Username
	user := models.User{
		OpenID:       fmt.Sprintf("local_%s_%d", in.Username, s.now().UnixMilli()),
		Username:     &username,
		PasswordHash: &hashed,
		Name:         name,
		LoginMethod:  models.LoginMethodPassword,
		Role:         models.RoleUser,
	}
	if in.Email != "" {
		email := in.Email
		user.Email = &email
	}

	id, err := s.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, apperr.Conflict(MsgUsernameTaken)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.ID = id

	return s.issue(op, &user)
}

// Login проверяет пароль и выдаёт сессию. Любое несовпадение даёт одно и то же сообщение.
func (s *Service) Login(ctx context.Context, username, rawPassword string) (sess *Session, err error) {
	const op = "auth.Login"
	defer func() { s.metrics.RecordAuthAttempt("login", err == nil) }()

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Authentication(MsgInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if user.PasswordHash == nil {
		return nil, apperr.Authentication(MsgInvalidCredentials)
	}
	if err := password.CompareHash(*user.PasswordHash, rawPassword); err != nil {
		return nil, apperr.Authentication(MsgInvalidCredentials)
	}

	if err := s.users.UpdateLastSignedIn(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.LastSignedIn = s.now()

	return s.issue(op, user)
}

// Me возвращает пользователя по ID или nil, если пользователь не аутентифицирован или удалён.
func (s *Service) Me(ctx context.Context, userID int64) (*models.User, error) {
	const op = "auth.Me"
	if userID <= 0 {
		return nil, nil
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func (s *Service) issue(op string, user *models.User) (*Session, error) {
	token, err := s.jwtMaker.GenerateToken(user.OpenID, user.Name, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Session{Token: token, User: user}, nil
}
