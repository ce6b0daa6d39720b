package userservice_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/Joaovenera/wms-sub004/internal/domain"
	apperror "github.com/Joaovenera/wms-sub004/internal/errors"
	"github.com/Joaovenera/wms-sub004/internal/pkg/logger"
	"github.com/Joaovenera/wms-sub004/internal/pkg/token"
	"github.com/Joaovenera/wms-sub004/internal/service/userservice"
)

// MockUserRepository é uma implementação mock da interface UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

// MockTokenService é uma implementação mock da interface TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateToken(userID string, userRole string) (string, error) {
	args := m.Called(userID, userRole)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) ValidateToken(tokenString string) (*token.CustomClaims, error) {
	args := m.Called(tokenString)
	return args.Get(0).(*token.CustomClaims), args.Error(1)
}

func newTestLogger() logger.Logger {
	return logger.NewLogger("error")
}

// --- Testes para Register ---

func TestRegister_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := userservice.NewService(mockRepo, mockToken, newTestLogger())

	reg := domain.UserRegistration{Email: "operador@wms.local", Password: "senha-forte"}

	mockRepo.On("Save", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		// A senha nunca é persistida em claro, e o papel padrão é operador.
		return u.Email == reg.Email && u.PasswordHash != reg.Password && u.Role == domain.RoleOperator
	})).Return(domain.User{ID: uuid.New().String(), Email: reg.Email, Role: domain.RoleOperator}, nil)

	ctx := context.Background()
	user, err := svc.Register(ctx, reg)

	assert.NoError(t, err)
	assert.NotEqual(t, "", user.ID)
	assert.Equal(t, domain.RoleOperator, user.Role)
	mockRepo.AssertExpectations(t)
}

func TestRegister_Fail_MissingCredentials(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := userservice.NewService(mockRepo, mockToken, newTestLogger())

	ctx := context.Background()
	_, err := svc.Register(ctx, domain.UserRegistration{Email: "", Password: ""})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Save")
}

func TestRegister_Fail_DuplicateEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := userservice.NewService(mockRepo, mockToken, newTestLogger())

	reg := domain.UserRegistration{Email: "repetido@wms.local", Password: "senha"}
	dbErr := apperror.NewDBError("duplicate key value violates unique constraint", assert.AnError)

	mockRepo.On("Save", mock.Anything, mock.Anything).Return(domain.User{}, dbErr)

	ctx := context.Background()
	_, err := svc.Register(ctx, reg)

	// Erro de DB na inserção vira conflito de negócio (409).
	assert.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
	assert.Contains(t, err.Error(), "já está em uso")
	mockRepo.AssertExpectations(t)
}

// --- Testes para Login ---

func TestLogin_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := userservice.NewService(mockRepo, mockToken, newTestLogger())

	password := "senha-correta"
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := domain.User{ID: uuid.New().String(), Email: "operador@wms.local", PasswordHash: string(hash), Role: domain.RoleOperator}

	mockRepo.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
	mockToken.On("GenerateToken", user.ID, string(domain.RoleOperator)).Return("signed-jwt", nil)

	ctx := context.Background()
	tokenString, err := svc.Login(ctx, user.Email, password)

	assert.NoError(t, err)
	assert.Equal(t, "signed-jwt", tokenString)
	mockRepo.AssertExpectations(t)
	mockToken.AssertExpectations(t)
}

func TestLogin_Fail_WrongPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := userservice.NewService(mockRepo, mockToken, newTestLogger())

	hash, _ := bcrypt.GenerateFromPassword([]byte("senha-correta"), bcrypt.MinCost)
	user := domain.User{ID: uuid.New().String(), Email: "operador@wms.local", PasswordHash: string(hash)}

	mockRepo.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)

	ctx := context.Background()
	_, err := svc.Login(ctx, user.Email, "senha-errada")

	assert.Error(t, err)
	assert.IsType(t, &apperror.UnauthorizedError{}, err)
	mockToken.AssertNotCalled(t, "GenerateToken")
}

func TestLogin_Fail_UnknownEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockToken := new(MockTokenService)
	svc := userservice.NewService(mockRepo, mockToken, newTestLogger())

	email := "fantasma@wms.local"
	mockRepo.On("FindByEmail", mock.Anything, email).
		Return(domain.User{}, apperror.NewNotFoundError("Usuário não encontrado"))

	ctx := context.Background()
	_, err := svc.Login(ctx, email, "qualquer")

	// Não revelamos se o email existe: mesma resposta de credencial inválida.
	assert.Error(t, err)
	assert.IsType(t, &apperror.UnauthorizedError{}, err)
	mockToken.AssertNotCalled(t, "GenerateToken")
}
