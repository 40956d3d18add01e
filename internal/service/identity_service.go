package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/d60-Lab/minitwit/internal/apperr"
	"github.com/d60-Lab/minitwit/internal/cache"
	"github.com/d60-Lab/minitwit/internal/model"
	"github.com/d60-Lab/minitwit/internal/repository"
	"github.com/d60-Lab/minitwit/pkg/logger"
	"github.com/d60-Lab/minitwit/pkg/pagination"
)

const maxUserIDLength = 64

var emailPattern = regexp.MustCompile(`^[a-z0-9]+[._]?[a-z0-9]+@[\w\-]+\.\w+$`)

// SignupInput 注册请求
type SignupInput struct {
	ID          string `json:"id" validate:"required,userid"`
	DisplayName string `json:"display_name" validate:"required,max=128"`
	Email       string `json:"email" validate:"required,email_addr"`
	Phone       string `json:"phone" validate:"required,phone"`
	Password    string `json:"password" validate:"required"`
}

// IdentityService 用户目录：存在性/唯一性检查、注册、查询
type IdentityService interface {
	Exists(ctx context.Context, id string) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	Signup(ctx context.Context, in SignupInput) (*model.User, error)
	Login(ctx context.Context, id, password string) (token string, err error)
	Get(ctx context.Context, id string) (cache.UserSnapshot, error)
	List(ctx context.Context, page, size int) (pagination.Page[*model.User], error)
	UsersCursor(size int) *pagination.Cursor[*model.User]
}

type identityService struct {
	users     repository.UserRepository
	profiles  *cache.ProfileCache
	creds     *CredentialService
	validator *validator.Validate
}

func NewIdentityService(users repository.UserRepository, profiles *cache.ProfileCache, creds *CredentialService) IdentityService {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	RegisterRules(v)
	return &identityService{users: users, profiles: profiles, creds: creds, validator: v}
}

// RegisterRules adds the userid, phone and email_addr rules to v. The HTTP
// layer registers them on gin's binding engine too.
func RegisterRules(v *validator.Validate) {
	_ = v.RegisterValidation("userid", func(fl validator.FieldLevel) bool {
		return ValidUserID(fl.Field().String())
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return validPhone(fl.Field().String())
	})
	_ = v.RegisterValidation("email_addr", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
}

// ValidUserID reports whether id can name a user: non-empty, at most 64 bytes,
// no whitespace or slashes.
func ValidUserID(id string) bool {
	if id == "" || len(id) > maxUserIDLength {
		return false
	}
	return !strings.ContainsFunc(id, func(r rune) bool {
		return unicode.IsSpace(r) || r == '/'
	})
}

func validPhone(s string) bool {
	if s == "" || len(s) > 32 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NormalizeEmail 去空白并转小写
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *identityService) Exists(ctx context.Context, id string) (bool, error) {
	ok, err := s.users.Exists(ctx, id)
	return ok, storageErr(err)
}

func (s *identityService) EmailTaken(ctx context.Context, email string) (bool, error) {
	ok, err := s.users.EmailTaken(ctx, NormalizeEmail(email))
	return ok, storageErr(err)
}

func (s *identityService) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Email = NormalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)

	if err := s.validator.Struct(in); err != nil {
		return nil, invalidInput(err)
	}

	if taken, err := s.users.Exists(ctx, in.ID); err != nil {
		return nil, storageErr(err)
	} else if taken {
		return nil, apperr.ErrUserIDTaken
	}
	if taken, err := s.users.EmailTaken(ctx, in.Email); err != nil {
		return nil, storageErr(err)
	} else if taken {
		return nil, apperr.ErrEmailTaken
	}

	hash, err := s.creds.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		ID:          in.ID,
		DisplayName: in.DisplayName,
		Email:       in.Email,
		Phone:       in.Phone,
		Credential:  hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			// 并发注册：唯一约束兜底，区分是邮箱还是 ID 冲突
			if taken, _ := s.users.EmailTaken(ctx, in.Email); taken {
				return nil, apperr.Wrap(apperr.ErrEmailTaken, err)
			}
			return nil, apperr.Wrap(apperr.ErrUserIDTaken, err)
		}
		logger.Error("signup failed", zap.String("user_id", in.ID), zap.Error(err))
		return nil, storageErr(err)
	}
	logger.Info("user signed up", zap.String("user_id", u.ID))
	return u, nil
}

func (s *identityService) Login(ctx context.Context, id, password string) (string, error) {
	u, err := s.users.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperr.ErrInvalidCredentials
		}
		return "", storageErr(err)
	}
	if err := s.creds.Verify(u.Credential, password); err != nil {
		return "", err
	}
	token, _, err := s.creds.IssueToken(u.ID)
	return token, err
}

func (s *identityService) Get(ctx context.Context, id string) (cache.UserSnapshot, error) {
	snap, ok, err := s.profiles.Get(ctx, id, s.users.GetMany)
	if err != nil {
		return cache.UserSnapshot{}, storageErr(err)
	}
	if !ok {
		return cache.UserSnapshot{}, apperr.ErrUnknownUser
	}
	return snap, nil
}

func (s *identityService) List(ctx context.Context, page, size int) (pagination.Page[*model.User], error) {
	p, err := pagination.FetchPage(ctx, s.users.List, page, size)
	return p, storageErr(err)
}

func (s *identityService) UsersCursor(size int) *pagination.Cursor[*model.User] {
	return pagination.NewCursor(s.users.List, size)
}

func invalidInput(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &apperr.Error{
			Kind:    apperr.KindValidation,
			Code:    apperr.CodeInvalidInput,
			Message: fmt.Sprintf("invalid %s", fe.Field()),
			Err:     err,
		}
	}
	return apperr.Wrap(apperr.ErrInvalidInput, err)
}
