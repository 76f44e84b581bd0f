package service

import (
	"context"
	"sort"
	"strings"

	"go-insumos-ws/internal/apierror"
	"go-insumos-ws/internal/model"
	"go-insumos-ws/internal/repository"

	"github.com/google/uuid"
)

type UserService interface {
	CreateUser(ctx context.Context, req *CreateUserRequest, actor model.Actor) (*model.UserResponse, error)
	DeleteUser(ctx context.Context, userID uuid.UUID, actor model.Actor) error
	UpdateUserPrivileges(ctx context.Context, userID uuid.UUID, privilegeCodes []string, actor model.Actor) (*model.UserResponse, error)
	GetAllUsers(ctx context.Context) ([]model.UserResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error)
	Roles(ctx context.Context) ([]model.Role, error)
	Privileges(ctx context.Context) ([]model.Privilege, error)
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
	RoleCode string `json:"role_code" validate:"required,oneof=MASTER_ADMIN STAFF"`
}

type userService struct {
	userRepo      repository.UserRepository
	privilegeRepo repository.PrivilegeRepository
	roleRepo      repository.RoleRepository
}

func NewUserService(userRepo repository.UserRepository, privilegeRepo repository.PrivilegeRepository, roleRepo repository.RoleRepository) UserService {
	return &userService{
		userRepo:      userRepo,
		privilegeRepo: privilegeRepo,
		roleRepo:      roleRepo,
	}
}

func (s *userService) CreateUser(ctx context.Context, req *CreateUserRequest, actor model.Actor) (*model.UserResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	role, err := s.roleRepo.FindByCode(ctx, req.RoleCode)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:    req.Email,
		FullName: req.FullName,
		RoleID:   &role.ID,
		Role:     role,
		IsActive: true,
		// privileges start as the role's set and are edited per user afterwards
		Privileges: role.Privileges,
	}
	user.CreatedBy = actor.ID
	user.UpdatedBy = actor.ID
	if err := user.SetPassword(req.Password); err != nil {
		return nil, apierror.Internal("failed to hash password", err)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if apierror.IsConflict(err) {
			return nil, apierror.Conflict("email already exists")
		}
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) DeleteUser(ctx context.Context, userID uuid.UUID, actor model.Actor) error {
	if userID.String() == actor.ID {
		return apierror.Conflict("you cannot delete your own account")
	}
	return s.userRepo.Delete(ctx, userID, actor.ID)
}

func (s *userService) UpdateUserPrivileges(ctx context.Context, userID uuid.UUID, privilegeCodes []string, actor model.Actor) (*model.UserResponse, error) {
	privileges, err := s.privilegeRepo.FindByCodes(ctx, privilegeCodes)
	if err != nil {
		return nil, err
	}
	if missing := missingCodes(privilegeCodes, privileges); len(missing) > 0 {
		return nil, apierror.ValidationFields(map[string]string{
			"privileges": "unknown privilege: " + strings.Join(missing, ", "),
		})
	}

	if err := s.userRepo.UpdatePrivileges(ctx, userID, privileges); err != nil {
		return nil, err
	}
	return s.GetUserByID(ctx, userID)
}

func missingCodes(codes []string, found []model.Privilege) []string {
	have := make(map[string]struct{}, len(found))
	for _, p := range found {
		have[p.Code] = struct{}{}
	}
	var missing []string
	for _, c := range codes {
		if _, ok := have[c]; !ok {
			missing = append(missing, c)
		}
	}
	sort.Strings(missing)
	return missing
}

func (s *userService) GetAllUsers(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := user.ToResponse()
	return &response, nil
}

func (s *userService) Roles(ctx context.Context) ([]model.Role, error) {
	return s.roleRepo.FindAll(ctx)
}

func (s *userService) Privileges(ctx context.Context) ([]model.Privilege, error) {
	return s.privilegeRepo.FindAll(ctx)
}
