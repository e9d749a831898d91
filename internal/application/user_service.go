package application

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/example/roombook/internal/kvstore"
	"github.com/example/roombook/internal/persistence"
	"github.com/example/roombook/internal/rbac"
)

const (
	registerCaptchaPrefix = "captcha_"
	passwordCaptchaPrefix = "update_password_captcha_"
	updateCaptchaPrefix   = "update_user_captcha_"

	registerCaptchaTTL = 5 * time.Minute
	passwordCaptchaTTL = 10 * time.Minute
	updateCaptchaTTL   = 10 * time.Minute

	minPasswordLength = 6
)

// UserRepository captures the persistence interactions needed by the service.
type UserRepository interface {
	CreateUser(ctx context.Context, user persistence.User) (persistence.User, error)
	UpdateUser(ctx context.Context, user persistence.User) error
	GetUser(ctx context.Context, id int64) (persistence.User, error)
	GetUserByUsername(ctx context.Context, username string) (persistence.User, error)
	FreezeUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context, filter persistence.UserFilter, skip, take int) ([]persistence.User, int64, error)
}

// PasswordHasher derives a storable hash from a plaintext password.
type PasswordHasher func(password string) (string, error)

// UserService orchestrates registration, captcha-gated updates, and account
// administration.
type UserService struct {
	users        UserRepository
	store        kvstore.Store
	mailer       Mailer
	hashPassword PasswordHasher
	generateCode func() string
	logger       *slog.Logger
}

// NewUserService wires dependencies for user operations. A nil hasher falls
// back to argon2id with default parameters; a nil code generator to a random
// six-digit code.
func NewUserService(users UserRepository, store kvstore.Store, mailer Mailer, hasher PasswordHasher, generateCode func() string, logger *slog.Logger) *UserService {
	if hasher == nil {
		hasher = func(password string) (string, error) {
			return CreatePasswordHash(password, DefaultArgon2idParams)
		}
	}
	if generateCode == nil {
		generateCode = randomCaptchaCode
	}
	return &UserService{
		users:        users,
		store:        store,
		mailer:       mailer,
		hashPassword: hasher,
		generateCode: generateCode,
		logger:       defaultLogger(logger),
	}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// Register creates an account after checking the captcha previously mailed
// to the address on record for the username.
func (s *UserService) Register(ctx context.Context, params RegisterParams) (result User, err error) {
	if s == nil || s.users == nil || s.store == nil {
		err = fmt.Errorf("user service not configured")
		return
	}

	logger := s.loggerWith(ctx, "Register", "username", params.Username)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "registration failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.ID).InfoContext(ctx, "user registered")
	}()

	if vErr := validateRegisterParams(params); vErr.HasErrors() {
		err = vErr
		return
	}

	if err = s.checkCaptcha(ctx, registerCaptchaPrefix+params.Username, params.Captcha); err != nil {
		return
	}

	if _, lookupErr := s.users.GetUserByUsername(ctx, params.Username); lookupErr == nil {
		err = ErrAlreadyExists
		return
	} else if !errors.Is(lookupErr, persistence.ErrNotFound) {
		err = lookupErr
		return
	}

	hash, err := s.hashPassword(params.Password)
	if err != nil {
		return
	}

	persisted, err := s.users.CreateUser(ctx, persistence.User{
		Username:     params.Username,
		PasswordHash: hash,
		NickName:     params.NickName,
		Email:        params.Email,
	})
	if err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			err = ErrAlreadyExists
		}
		return
	}

	result = userFromPersistence(persisted, nil, nil)
	return
}

// SendRegisterCaptcha mails a one-time code for registration. The code is
// keyed by the username the account will use.
func (s *UserService) SendRegisterCaptcha(ctx context.Context, username, address string) error {
	return s.sendCaptcha(ctx, "SendRegisterCaptcha", registerCaptchaPrefix+username, address, registerCaptchaTTL, "CAPTCHA", "Your CAPTCHA is %s")
}

// SendPasswordCaptcha mails a one-time code for a password change.
func (s *UserService) SendPasswordCaptcha(ctx context.Context, address string) error {
	return s.sendCaptcha(ctx, "SendPasswordCaptcha", passwordCaptchaPrefix+address, address, passwordCaptchaTTL, "Change Password", "Your CAPTCHA is %s")
}

// SendUpdateCaptcha mails a one-time code for a profile update.
func (s *UserService) SendUpdateCaptcha(ctx context.Context, address string) error {
	return s.sendCaptcha(ctx, "SendUpdateCaptcha", updateCaptchaPrefix+address, address, updateCaptchaTTL, "Update User info", "Your CAPTCHA is %s")
}

func (s *UserService) sendCaptcha(ctx context.Context, operation, key, address string, ttl time.Duration, subject, bodyFormat string) (err error) {
	if s == nil || s.store == nil || s.mailer == nil {
		return fmt.Errorf("user service not configured")
	}

	logger := s.loggerWith(ctx, operation, "address", address)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "captcha delivery failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "captcha sent")
	}()

	if _, parseErr := mail.ParseAddress(address); parseErr != nil {
		vErr := &ValidationError{}
		vErr.add("address", "invalid email format")
		err = vErr
		return
	}

	code := s.generateCode()
	if err = s.store.Set(ctx, key, code, ttl); err != nil {
		return
	}

	body := fmt.Sprintf("<p>"+bodyFormat+"</p>", code)
	err = s.mailer.Send(ctx, address, subject, body)
	return
}

// UpdatePassword replaces the password after checking the captcha mailed to
// the address.
func (s *UserService) UpdatePassword(ctx context.Context, params UpdatePasswordParams) (err error) {
	if s == nil || s.users == nil || s.store == nil {
		return fmt.Errorf("user service not configured")
	}

	logger := s.loggerWith(ctx, "UpdatePassword", "user_id", params.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "password update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "password updated")
	}()

	if len(params.Password) < minPasswordLength {
		vErr := &ValidationError{}
		vErr.add("password", fmt.Sprintf("password cannot be less than %d characters", minPasswordLength))
		err = vErr
		return
	}

	if err = s.checkCaptcha(ctx, passwordCaptchaPrefix+params.Email, params.Captcha); err != nil {
		return
	}

	stored, err := s.users.GetUser(ctx, params.UserID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrNotFound
		}
		return
	}

	hash, err := s.hashPassword(params.Password)
	if err != nil {
		return
	}
	stored.PasswordHash = hash

	err = s.users.UpdateUser(ctx, stored)
	return
}

// UpdateProfile overwrites nickname, head pic, and email after checking the
// captcha mailed to the new address.
func (s *UserService) UpdateProfile(ctx context.Context, params UpdateProfileParams) (err error) {
	if s == nil || s.users == nil || s.store == nil {
		return fmt.Errorf("user service not configured")
	}

	logger := s.loggerWith(ctx, "UpdateProfile", "user_id", params.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "profile update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "profile updated")
	}()

	if err = s.checkCaptcha(ctx, updateCaptchaPrefix+params.Email, params.Captcha); err != nil {
		return
	}

	stored, err := s.users.GetUser(ctx, params.UserID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrNotFound
		}
		return
	}

	if params.NickName != "" {
		stored.NickName = params.NickName
	}
	if params.HeadPic != "" {
		stored.HeadPic = params.HeadPic
	}
	stored.Email = params.Email

	err = s.users.UpdateUser(ctx, stored)
	return
}

// Freeze flags the account; frozen accounts are excluded from login.
func (s *UserService) Freeze(ctx context.Context, id int64) error {
	if s == nil || s.users == nil {
		return fmt.Errorf("user service not configured")
	}

	logger := s.loggerWith(ctx, "Freeze", "user_id", id)

	if err := s.users.FreezeUser(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrNotFound
		}
		logger.ErrorContext(ctx, "freeze failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "user frozen")
	return nil
}

// Info returns the profile for an account.
func (s *UserService) Info(ctx context.Context, id int64) (User, error) {
	if s == nil || s.users == nil {
		return User{}, fmt.Errorf("user service not configured")
	}

	stored, err := s.users.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}

	roleNames, permissions := rbac.Aggregate(rbacRoles(stored.Roles))
	return userFromPersistence(stored, roleNames, permissions), nil
}

// List returns one page of accounts.
func (s *UserService) List(ctx context.Context, params ListUsersParams) (UserPage, error) {
	if s == nil || s.users == nil {
		return UserPage{}, fmt.Errorf("user service not configured")
	}

	if params.PageNo < 1 || params.PageSize < 0 {
		vErr := &ValidationError{}
		vErr.add("page", "pageNo must be >= 1 and pageSize must be >= 0")
		return UserPage{}, vErr
	}

	filter := persistence.UserFilter{
		Username: params.Username,
		NickName: params.NickName,
		Email:    params.Email,
	}

	skip := (params.PageNo - 1) * params.PageSize
	users, total, err := s.users.ListUsers(ctx, filter, skip, params.PageSize)
	if err != nil {
		return UserPage{}, err
	}

	page := UserPage{TotalCount: total, Users: make([]User, 0, len(users))}
	for _, stored := range users {
		page.Users = append(page.Users, userFromPersistence(stored, nil, nil))
	}
	return page, nil
}

func (s *UserService) checkCaptcha(ctx context.Context, key, supplied string) error {
	stored, found, err := s.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if !found {
		return ErrCaptchaExpired
	}
	if stored != supplied {
		return ErrCaptchaMismatch
	}
	return nil
}

func validateRegisterParams(params RegisterParams) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(params.Username) == "" {
		vErr.add("username", "username cannot be empty")
	}
	if strings.TrimSpace(params.NickName) == "" {
		vErr.add("nickName", "nickname cannot be empty")
	}
	if len(params.Password) < minPasswordLength {
		vErr.add("password", fmt.Sprintf("password cannot be less than %d characters", minPasswordLength))
	}
	if _, err := mail.ParseAddress(params.Email); err != nil {
		vErr.add("email", "invalid email format")
	}
	if params.Captcha == "" {
		vErr.add("captcha", "captcha cannot be empty")
	}
	return vErr
}

func randomCaptchaCode() string {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "000000"
	}
	return fmt.Sprintf("%06d", n.Int64())
}
