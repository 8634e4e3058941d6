package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/sabanapos/pedidos-api/internal/application/dto"
	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/domain/repository"
	"github.com/sabanapos/pedidos-api/internal/domain/role"
	"github.com/sabanapos/pedidos-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro y login.
type AuthUseCase struct {
	userRepo     repository.UserRepository
	locationRepo repository.LocationRepository
	resolver     role.Resolver
	jwtCfg       JWTConfig
	log          zerolog.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, locationRepo repository.LocationRepository, resolver role.Resolver, jwtCfg JWTConfig, log zerolog.Logger) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, locationRepo: locationRepo, resolver: resolver, jwtCfg: jwtCfg, log: log}
}

// RegisterUser crea un usuario con el rol que corresponde al dominio de su email.
// Un dominio no institucional devuelve ErrInvalidDomain. Los operadores pueden indicar su punto de venta.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	userRole, err := uc.resolver.ResolveRole(email)
	if err != nil {
		return nil, err
	}
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	if userRole == entity.RoleOperator && in.LocationID != "" {
		loc, err := uc.locationRepo.GetByID(ctx, in.LocationID)
		if err != nil {
			return nil, err
		}
		if loc == nil {
			return nil, fmt.Errorf("punto de venta %s: %w", in.LocationID, domain.ErrNotFound)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	name := in.Name
	if name == "" {
		name = email
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         userRole,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	if userRole == entity.RoleOperator && in.LocationID != "" {
		if err := uc.locationRepo.AssignOperator(ctx, &entity.OperatorAssignment{
			LocationID:    in.LocationID,
			OperatorEmail: email,
			CreatedAt:     now,
		}); err != nil {
			return nil, fmt.Errorf("asignar operador: %w", err)
		}
	}
	uc.log.Info().Str("user_id", user.ID).Str("role", userRole).Msg("usuario registrado")
	return toUserResponse(user), nil
}

// Login verifica email/password, genera JWT y retorna token + usuario.
// Si el rol guardado ya no coincide con la política de dominios se registra una advertencia y el login continúa;
// las acciones privilegiadas vuelven a verificar el rol y lo bloquean.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return nil, err
	}
	// Correo desconocido y contraseña incorrecta responden igual
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if err := uc.resolver.VerifyClaim(user.Email, user.Role); err != nil {
		uc.log.Warn().
			Str("user_id", user.ID).
			Str("email", user.Email).
			Str("stored_role", user.Role).
			Msg("rol guardado no coincide con el dominio del email")
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Email, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  *toUserResponse(user),
	}, nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
