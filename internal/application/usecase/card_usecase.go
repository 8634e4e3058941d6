package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sabanapos/pedidos-api/internal/application/dto"
	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/domain/repository"
	"github.com/sabanapos/pedidos-api/internal/domain/role"
)

// CardUseCase tarjetas guardadas y saldo del cliente.
type CardUseCase struct {
	cards repository.CardRepository
	users repository.UserRepository
}

// NewCardUseCase construye el caso de uso.
func NewCardUseCase(cards repository.CardRepository, users repository.UserRepository) *CardUseCase {
	return &CardUseCase{cards: cards, users: users}
}

// Add valida el número (Luhn), guarda solo su hash y los últimos 4 dígitos.
func (uc *CardUseCase) Add(ctx context.Context, a Actor, in dto.AddCardRequest) (*dto.CardResponse, error) {
	if err := requireFeature(a, role.FeatureCards); err != nil {
		return nil, err
	}
	number := normalizeCardNumber(in.Number)
	if !validLuhn(number) {
		return nil, domain.ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(number), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	cardType := strings.ToLower(strings.TrimSpace(in.Type))
	if cardType == "" {
		cardType = detectCardType(number)
	}
	card := &entity.Card{
		ID:         uuid.New().String(),
		UserID:     a.UserID,
		Type:       cardType,
		Last4:      number[len(number)-4:],
		NumberHash: string(hash),
		CreatedAt:  time.Now(),
	}
	if err := uc.cards.Create(ctx, card); err != nil {
		return nil, err
	}
	return toCardResponse(card), nil
}

// List tarjetas del cliente, enmascaradas.
func (uc *CardUseCase) List(ctx context.Context, a Actor) ([]dto.CardResponse, error) {
	if err := requireFeature(a, role.FeatureCards); err != nil {
		return nil, err
	}
	list, err := uc.cards.ListByUser(ctx, a.UserID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CardResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *toCardResponse(c))
	}
	return out, nil
}

// Delete elimina una tarjeta propia.
func (uc *CardUseCase) Delete(ctx context.Context, a Actor, id string) error {
	if err := requireFeature(a, role.FeatureCards); err != nil {
		return err
	}
	if _, err := uc.owned(ctx, a, id); err != nil {
		return err
	}
	return uc.cards.Delete(ctx, id)
}

// Balance saldo actual del cliente.
func (uc *CardUseCase) Balance(ctx context.Context, a Actor) (*dto.BalanceResponse, error) {
	if err := requireFeature(a, role.FeatureBalance); err != nil {
		return nil, err
	}
	u, err := uc.users.GetByID(ctx, a.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	return &dto.BalanceResponse{Balance: u.Balance}, nil
}

// TopUp recarga saldo con una tarjeta guardada.
func (uc *CardUseCase) TopUp(ctx context.Context, a Actor, in dto.TopUpRequest) (*dto.BalanceResponse, error) {
	if err := requireFeature(a, role.FeatureBalance); err != nil {
		return nil, err
	}
	if in.Amount <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if _, err := uc.owned(ctx, a, in.CardID); err != nil {
		return nil, err
	}
	bal, err := uc.users.AddBalance(ctx, a.UserID, in.Amount)
	if err != nil {
		return nil, err
	}
	return &dto.BalanceResponse{Balance: bal}, nil
}

func (uc *CardUseCase) owned(ctx context.Context, a Actor, id string) (*entity.Card, error) {
	c, err := uc.cards.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	if c.UserID != a.UserID {
		return nil, domain.ErrForbidden
	}
	return c, nil
}

func normalizeCardNumber(n string) string {
	return strings.ReplaceAll(strings.ReplaceAll(strings.TrimSpace(n), " ", ""), "-", "")
}

// validLuhn dígito verificador de tarjetas (13 a 19 dígitos).
func validLuhn(number string) bool {
	if len(number) < 13 || len(number) > 19 {
		return false
	}
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		c := number[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func detectCardType(number string) string {
	switch {
	case strings.HasPrefix(number, "4"):
		return "visa"
	case strings.HasPrefix(number, "34"), strings.HasPrefix(number, "37"):
		return "amex"
	case number[0] == '5' && number[1] >= '1' && number[1] <= '5':
		return "mastercard"
	}
	return "other"
}

func toCardResponse(c *entity.Card) *dto.CardResponse {
	return &dto.CardResponse{ID: c.ID, Type: c.Type, Last4: c.Last4, CreatedAt: c.CreatedAt}
}
