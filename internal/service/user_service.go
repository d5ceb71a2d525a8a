package service

import (
	"Lazo/internal/api/dto"
	"Lazo/internal/model"
	"Lazo/internal/pkg/cache"
	"Lazo/internal/pkg/consts"
	mongorepo "Lazo/internal/pkg/mongo"
	"Lazo/internal/pkg/security"
	"Lazo/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"strconv"

	"github.com/jinzhu/copier"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

type UserService interface {
	Register(ctx context.Context, regDTO *dto.RegisterDTO) (*dto.TokenDTO, error)
	Login(ctx context.Context, loginDTO *dto.LoginDTO) (*dto.TokenDTO, error)
	GetProfile(ctx context.Context, id uint64) (*dto.UserDTO, error)
	GetProfileByEmail(ctx context.Context, email string) (*dto.UserDTO, error)
	GetSummary(ctx context.Context, id uint64) (*mongorepo.UserSummary, error)
}

type userServiceImpl struct {
	userRepo    repository.UserRepo
	profileRepo mongorepo.UserRepo
	seq         *cache.Sequencer
}

func NewUserService(
	userRepo repository.UserRepo,
	profileRepo mongorepo.UserRepo,
	seq *cache.Sequencer,
) UserService {
	return &userServiceImpl{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		seq:         seq,
	}
}

// Register 凭据入关系库，档案文档以相同 ID 落文档库
// 档案创建失败时凭据已提交，不回滚：档案读取路径兜底补建
func (s *userServiceImpl) Register(ctx context.Context, regDTO *dto.RegisterDTO) (*dto.TokenDTO, error) {
	if _, err := s.userRepo.GetByEmail(ctx, regDTO.Email); err == nil {
		return nil, ErrUserEmailExist
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	passwordHash, err := security.HashPassword(regDTO.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: regDTO.Username,
		Email:    regDTO.Email,
		Password: passwordHash,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrUserUsernameExist
		}
		return nil, err
	}

	profile := &mongorepo.UserProfile{
		UserID:    user.ID,
		Name:      regDTO.Username,
		Email:     regDTO.Email,
		AvatarURL: consts.DefaultAvatarURL,
	}
	if err := s.profileRepo.CreateProfile(ctx, profile); err != nil {
		log.ErrorContext(ctx, "create profile failed", "user_id", user.ID, "err", err)
	}

	token, err := security.GenerateToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &dto.TokenDTO{Token: token, UserID: user.ID}, nil
}

func (s *userServiceImpl) Login(ctx context.Context, loginDTO *dto.LoginDTO) (*dto.TokenDTO, error) {
	user, err := s.userRepo.GetByEmail(ctx, loginDTO.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := security.CheckPasswordHash(loginDTO.Password, user.Password); err != nil {
		return nil, ErrPasswordIncorrect
	}

	token, err := security.GenerateToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &dto.TokenDTO{Token: token, UserID: user.ID}, nil
}

// GetProfile 旁路缓存读取用户档案
func (s *userServiceImpl) GetProfile(ctx context.Context, id uint64) (*dto.UserDTO, error) {
	key := consts.ProfileKey + strconv.FormatUint(id, 10)

	var profile mongorepo.UserProfile
	err := s.seq.Gateway().GetOrCompute(ctx, key, s.seq.ProfileTTL(), &profile, func() error {
		found, err := s.profileRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		profile = *found
		return nil
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserDTO(&profile)
}

func (s *userServiceImpl) GetProfileByEmail(ctx context.Context, email string) (*dto.UserDTO, error) {
	key := consts.UserEmailKey + email

	var profile mongorepo.UserProfile
	err := s.seq.Gateway().GetOrCompute(ctx, key, s.seq.ProfileTTL(), &profile, func() error {
		found, err := s.profileRepo.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		profile = *found
		return nil
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserDTO(&profile)
}

// GetSummary 嵌入其它文档用的用户摘要，独立小键缓存
func (s *userServiceImpl) GetSummary(ctx context.Context, id uint64) (*mongorepo.UserSummary, error) {
	key := consts.UserKey + strconv.FormatUint(id, 10)

	var summary mongorepo.UserSummary
	err := s.seq.Gateway().GetOrCompute(ctx, key, s.seq.ProfileTTL(), &summary, func() error {
		profile, err := s.profileRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		summary = profile.Summary()
		return nil
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &summary, nil
}

func toUserDTO(profile *mongorepo.UserProfile) (*dto.UserDTO, error) {
	userDTO := &dto.UserDTO{}
	if err := copier.Copy(userDTO, profile); err != nil {
		return nil, err
	}
	return userDTO, nil
}
