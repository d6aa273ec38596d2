package usecase

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/masykurm/talent-scout/internal/model"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type UserStore interface {
	Create(user *model.User) error
	FindByEmail(email string) (*model.User, error)
	FindByToken(token string) (*model.User, error)
	FindSettingsByUser(userID uuid.UUID) (*model.UserSettings, error)
	UpdateSettings(settings *model.UserSettings) error
}

type AccountUsecase struct {
	users  UserStore
	logger *zap.Logger
}

func NewAccountUsecase(users UserStore, logger *zap.Logger) *AccountUsecase {
	return &AccountUsecase{users: users, logger: logger}
}

// Register creates the user and their settings row in one go. Settings are
// always constructed here, never materialized later as a side effect of a
// read.
func (uc *AccountUsecase) Register(email, password, researchModel string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := uc.users.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	if researchModel == "" {
		researchModel = model.DefaultResearchModel
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hash),
		APIToken:     newAPIToken(),
		Settings: model.UserSettings{
			ResearchModel: researchModel,
		},
	}
	if err := uc.users.Create(user); err != nil {
		return nil, err
	}
	uc.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (uc *AccountUsecase) Login(email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := uc.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (uc *AccountUsecase) GetSettings(userID uuid.UUID) (*model.UserSettings, error) {
	return uc.users.FindSettingsByUser(userID)
}

func (uc *AccountUsecase) UpdateResearchModel(userID uuid.UUID, researchModel string) (*model.UserSettings, error) {
	settings, err := uc.users.FindSettingsByUser(userID)
	if err != nil {
		return nil, err
	}
	settings.ResearchModel = researchModel
	if err := uc.users.UpdateSettings(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func newAPIToken() string {
	return "ts_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
