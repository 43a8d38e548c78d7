package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"passgate/internal/domain/entity"
	domainerrors "passgate/internal/domain/errors"
	"passgate/internal/domain/repository"
	"passgate/internal/infra/auth"
	"passgate/internal/infra/metrics"
	mockRepo "passgate/internal/mocks/repository"
	mockSvc "passgate/internal/mocks/service"
	"passgate/internal/usecase"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// credentialServiceFixtures holds all test dependencies for credential service tests.
type credentialServiceFixtures struct {
	service      usecase.CredentialUsecase
	accountRepo  *mockRepo.MockAccountRepository
	hasher       *mockSvc.MockPasswordHasher
	tokenService *mockSvc.MockTokenService
	metrics      *metrics.Metrics
}

func createTestCredentialService(t *testing.T) credentialServiceFixtures {
	accountRepo := mockRepo.NewMockAccountRepository(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	tokenService := mockSvc.NewMockTokenService(t)
	m := metrics.New(nil)

	service := NewCredentialService(CredentialServiceParams{
		AccountRepo:  accountRepo,
		Hasher:       hasher,
		TokenService: tokenService,
		Metrics:      m,
		Logger:       newDiscardLogger(),
	})

	return credentialServiceFixtures{
		service:      service,
		accountRepo:  accountRepo,
		hasher:       hasher,
		tokenService: tokenService,
		metrics:      m,
	}
}

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string {
	return &s
}

func credentialCount(m *metrics.Metrics, operation, outcome string) float64 {
	return testutil.ToFloat64(m.CredentialOperations().WithLabelValues(operation, outcome))
}

func TestCredentialService_Signup_Success(t *testing.T) {
	fx := createTestCredentialService(t)
	ctx := context.Background()
	input := &usecase.SignupInput{Name: strPtr("Ann"), Email: "  Ann@X.com ", Password: "secret123"}

	fx.hasher.EXPECT().ValidatePassword("secret123").Return(nil)
	fx.accountRepo.EXPECT().FindByEmail(ctx, "ann@x.com").Return(nil, repository.ErrAccountNotFound)
	fx.hasher.EXPECT().Hash(ctx, "secret123").Return("$2a$10$digest", nil)
	fx.accountRepo.EXPECT().
		Create(ctx, mock.MatchedBy(func(a *entity.Account) bool {
			return a.Email == "ann@x.com" && a.PasswordHash == "$2a$10$digest" && a.Name != nil && *a.Name == "Ann"
		})).
		Run(func(_ context.Context, a *entity.Account) {
			a.ID = 1
			a.CreatedAt = time.Now()
		}).
		Return(nil)

	output, err := fx.service.Signup(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, &usecase.SignupOutput{ID: 1, Name: strPtr("Ann"), Email: "ann@x.com"}, output)
	assert.Equal(t, 1.0, credentialCount(fx.metrics, metrics.OperationSignup, metrics.OutcomeSuccess))
}

func TestCredentialService_Signup_WithoutName(t *testing.T) {
	fx := createTestCredentialService(t)
	ctx := context.Background()

	fx.hasher.EXPECT().ValidatePassword("secret123").Return(nil)
	fx.accountRepo.EXPECT().FindByEmail(ctx, "bob@x.com").Return(nil, repository.ErrAccountNotFound)
	fx.hasher.EXPECT().Hash(ctx, "secret123").Return("$2a$10$digest", nil)
	fx.accountRepo.EXPECT().
		Create(ctx, mock.MatchedBy(func(a *entity.Account) bool { return a.Name == nil })).
		Run(func(_ context.Context, a *entity.Account) { a.ID = 2 }).
		Return(nil)

	output, err := fx.service.Signup(ctx, &usecase.SignupInput{Name: strPtr("   "), Email: "bob@x.com", Password: "secret123"})

	require.NoError(t, err)
	assert.Nil(t, output.Name)
}

func TestCredentialService_Signup_DuplicateAccount(t *testing.T) {
	fx := createTestCredentialService(t)
	ctx := context.Background()

	fx.hasher.EXPECT().ValidatePassword("secret123").Return(nil)
	fx.accountRepo.EXPECT().FindByEmail(ctx, "ann@x.com").
		Return(&entity.Account{ID: 1, Email: "ann@x.com", PasswordHash: "$2a$10$digest"}, nil)

	output, err := fx.service.Signup(ctx, &usecase.SignupInput{Email: "ann@x.com", Password: "secret123"})

	assert.Nil(t, output)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrDuplicateAccount))
	fx.accountRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	fx.hasher.AssertNotCalled(t, "Hash", mock.Anything, mock.Anything)
	assert.Equal(t, 1.0, credentialCount(fx.metrics, metrics.OperationSignup, metrics.OutcomeDuplicate))
}

func TestCredentialService_Signup_LostRace(t *testing.T) {
	fx := createTestCredentialService(t)
	ctx := context.Background()

	fx.hasher.EXPECT().ValidatePassword("secret123").Return(nil)
	fx.accountRepo.EXPECT().FindByEmail(ctx, "ann@x.com").Return(nil, repository.ErrAccountNotFound)
	fx.hasher.EXPECT().Hash(ctx, "secret123").Return("$2a$10$digest", nil)
	fx.accountRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.Account")).
		Return(errors.WithStack(repository.ErrAccountConflict))

	_, err := fx.service.Signup(ctx, &usecase.SignupInput{Email: "ann@x.com", Password: "secret123"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrDuplicateAccount))
}

func TestCredentialService_Signup_PersistenceFailure(t *testing.T) {
	dbErr := errors.New("connection reset")

	t.Run("lookup fails", func(t *testing.T) {
		fx := createTestCredentialService(t)
		ctx := context.Background()

		fx.hasher.EXPECT().ValidatePassword("secret123").Return(nil)
		fx.accountRepo.EXPECT().FindByEmail(ctx, "ann@x.com").Return(nil, dbErr)

		_, err := fx.service.Signup(ctx, &usecase.SignupInput{Email: "ann@x.com", Password: "secret123"})

		require.Error(t, err)
		assert.True(t, errors.Is(err, domainerrors.ErrAccountPersistence))
		assert.True(t, errors.Is(err, dbErr))
		assert.Equal(t, 1.0, credentialCount(fx.metrics, metrics.OperationSignup, metrics.OutcomeError))
	})

	t.Run("create fails", func(t *testing.T) {
		fx := createTestCredentialService(t)
		ctx := context.Background()

		fx.hasher.EXPECT().ValidatePassword("secret123").Return(nil)
		fx.accountRepo.EXPECT().FindByEmail(ctx, "ann@x.com").Return(nil, repository.ErrAccountNotFound)
		fx.hasher.EXPECT().Hash(ctx, "secret123").Return("$2a$10$digest", nil)
		fx.accountRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.Account")).Return(dbErr)

		_, err := fx.service.Signup(ctx, &usecase.SignupInput{Email: "ann@x.com", Password: "secret123"})

		require.Error(t, err)
		assert.True(t, errors.Is(err, domainerrors.ErrAccountPersistence))
		assert.False(t, errors.Is(err, domainerrors.ErrDuplicateAccount))
	})
}

func TestCredentialService_Signup_HashFailure(t *testing.T) {
	fx := createTestCredentialService(t)
	ctx := context.Background()

	fx.hasher.EXPECT().ValidatePassword("secret123").Return(nil)
	fx.accountRepo.EXPECT().FindByEmail(ctx, "ann@x.com").Return(nil, repository.ErrAccountNotFound)
	fx.hasher.EXPECT().Hash(ctx, "secret123").Return("", errors.New("pool closed"))

	_, err := fx.service.Signup(ctx, &usecase.SignupInput{Email: "ann@x.com", Password: "secret123"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInternalError))
	fx.accountRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCredentialService_Signup_InvalidInput(t *testing.T) {
	t.Run("password policy", func(t *testing.T) {
		fx := createTestCredentialService(t)

		fx.hasher.EXPECT().ValidatePassword("short").
			Return(domainerrors.ErrPasswordPolicy.WithDetails("password must be at least 8 characters long"))

		_, err := fx.service.Signup(context.Background(), &usecase.SignupInput{Email: "ann@x.com", Password: "short"})

		require.Error(t, err)
		assert.True(t, errors.Is(err, domainerrors.ErrPasswordPolicy))
		assert.Equal(t, 1.0, credentialCount(fx.metrics, metrics.OperationSignup, metrics.OutcomeInvalidInput))
	})

	t.Run("blank email", func(t *testing.T) {
		fx := createTestCredentialService(t)

		_, err := fx.service.Signup(context.Background(), &usecase.SignupInput{Email: "   ", Password: "secret123"})

		require.Error(t, err)
		assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
	})

	t.Run("nil input", func(t *testing.T) {
		fx := createTestCredentialService(t)

		_, err := fx.service.Signup(context.Background(), nil)

		assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
	})
}

func TestCredentialService_Login_Success(t *testing.T) {
	fx := createTestCredentialService(t)
	ctx := context.Background()
	account := &entity.Account{ID: 1, Email: "ann@x.com", PasswordHash: "$2a$10$digest"}

	fx.accountRepo.EXPECT().FindByEmail(ctx, "ann@x.com").Return(account, nil)
	fx.hasher.EXPECT().Check(ctx, "secret123", "$2a$10$digest").Return(true, nil)
	fx.tokenService.EXPECT().DefaultTTL().Return(time.Hour)
	fx.tokenService.EXPECT().Issue(entity.Identity{ID: 1, Email: "ann@x.com"}, time.Hour).
		Return("signed.token.value", time.Now().Add(time.Hour), nil)

	output, err := fx.service.Login(ctx, &usecase.LoginInput{Email: "ANN@x.com", Password: "secret123"})

	require.NoError(t, err)
	assert.Equal(t, &usecase.LoginOutput{AccessToken: "signed.token.value", TokenType: "Bearer", ExpiresIn: 3600}, output)
	assert.Equal(t, 1.0, credentialCount(fx.metrics, metrics.OperationLogin, metrics.OutcomeSuccess))
}

func TestCredentialService_Login_InvalidCredentialsAreIndistinguishable(t *testing.T) {
	ctx := context.Background()

	wrongPassword := createTestCredentialService(t)
	wrongPassword.accountRepo.EXPECT().FindByEmail(ctx, "ann@x.com").
		Return(&entity.Account{ID: 1, Email: "ann@x.com", PasswordHash: "$2a$10$digest"}, nil)
	wrongPassword.hasher.EXPECT().Check(ctx, "wrongpass", "$2a$10$digest").Return(false, nil)

	_, wrongPasswordErr := wrongPassword.service.Login(ctx, &usecase.LoginInput{Email: "ann@x.com", Password: "wrongpass"})

	unknownEmail := createTestCredentialService(t)
	unknownEmail.accountRepo.EXPECT().FindByEmail(ctx, "nobody@x.com").Return(nil, repository.ErrAccountNotFound)
	unknownEmail.hasher.EXPECT().Hash(mock.Anything, mock.AnythingOfType("string")).Return("$2a$10$decoy", nil).Once()
	unknownEmail.hasher.EXPECT().Check(ctx, "wrongpass", "$2a$10$decoy").Return(false, nil)

	_, unknownEmailErr := unknownEmail.service.Login(ctx, &usecase.LoginInput{Email: "nobody@x.com", Password: "wrongpass"})

	require.Error(t, wrongPasswordErr)
	require.Error(t, unknownEmailErr)
	assert.True(t, errors.Is(wrongPasswordErr, domainerrors.ErrInvalidCredentials))
	assert.True(t, errors.Is(unknownEmailErr, domainerrors.ErrInvalidCredentials))
	assert.Equal(t, wrongPasswordErr.Error(), unknownEmailErr.Error())

	var a, b domainerrors.AppError
	require.True(t, errors.As(wrongPasswordErr, &a))
	require.True(t, errors.As(unknownEmailErr, &b))
	assert.Equal(t, a.ErrorCode(), b.ErrorCode())
	assert.Equal(t, a.Message(), b.Message())
	assert.Equal(t, a.Details(), b.Details())
	assert.Equal(t, a.HTTPCode(), b.HTTPCode())

	unknownEmail.tokenService.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
	wrongPassword.tokenService.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
}

func TestCredentialService_Login_DecoyDigestIsComputedOnce(t *testing.T) {
	fx := createTestCredentialService(t)
	ctx := context.Background()

	fx.accountRepo.EXPECT().FindByEmail(ctx, "nobody@x.com").Return(nil, repository.ErrAccountNotFound)
	fx.hasher.EXPECT().Hash(mock.Anything, mock.AnythingOfType("string")).Return("$2a$10$decoy", nil).Once()
	fx.hasher.EXPECT().Check(ctx, "wrongpass", "$2a$10$decoy").Return(false, nil)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fx.service.Login(ctx, &usecase.LoginInput{Email: "nobody@x.com", Password: "wrongpass"})
			assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
		}()
	}
	wg.Wait()

	assert.Equal(t, 4.0, credentialCount(fx.metrics, metrics.OperationLogin, metrics.OutcomeInvalidCredential))
}

func TestCredentialService_Login_RepositoryFailure(t *testing.T) {
	fx := createTestCredentialService(t)
	ctx := context.Background()

	fx.accountRepo.EXPECT().FindByEmail(ctx, "ann@x.com").Return(nil, errors.New("connection reset"))

	_, err := fx.service.Login(ctx, &usecase.LoginInput{Email: "ann@x.com", Password: "secret123"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrAccountPersistence))
	fx.hasher.AssertNotCalled(t, "Check", mock.Anything, mock.Anything, mock.Anything)
}

func TestCredentialService_Login_TokenFailure(t *testing.T) {
	fx := createTestCredentialService(t)
	ctx := context.Background()

	fx.accountRepo.EXPECT().FindByEmail(ctx, "ann@x.com").
		Return(&entity.Account{ID: 1, Email: "ann@x.com", PasswordHash: "$2a$10$digest"}, nil)
	fx.hasher.EXPECT().Check(ctx, "secret123", "$2a$10$digest").Return(true, nil)
	fx.tokenService.EXPECT().DefaultTTL().Return(time.Hour)
	fx.tokenService.EXPECT().Issue(mock.Anything, time.Hour).Return("", time.Time{}, errors.New("sign failed"))

	_, err := fx.service.Login(ctx, &usecase.LoginInput{Email: "ann@x.com", Password: "secret123"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInternalError))
}

func TestCredentialService_Login_ComparisonNotRun(t *testing.T) {
	fx := createTestCredentialService(t)
	ctx := context.Background()

	fx.accountRepo.EXPECT().FindByEmail(ctx, "ann@x.com").
		Return(&entity.Account{ID: 1, Email: "ann@x.com", PasswordHash: "$2a$10$digest"}, nil)
	fx.hasher.EXPECT().Check(ctx, "secret123", "$2a$10$digest").Return(false, context.DeadlineExceeded)

	_, err := fx.service.Login(ctx, &usecase.LoginInput{Email: "ann@x.com", Password: "secret123"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInternalError))
	assert.False(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, 1.0, credentialCount(fx.metrics, metrics.OperationLogin, metrics.OutcomeError))
	assert.Equal(t, 0.0, credentialCount(fx.metrics, metrics.OperationLogin, metrics.OutcomeInvalidCredential))
	fx.tokenService.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
}

func TestCredentialService_Login_DecoyRetriedAfterHashFailure(t *testing.T) {
	fx := createTestCredentialService(t)
	ctx := context.Background()

	fx.accountRepo.EXPECT().FindByEmail(ctx, "nobody@x.com").Return(nil, repository.ErrAccountNotFound)
	fx.hasher.EXPECT().Hash(mock.Anything, mock.AnythingOfType("string")).Return("", errors.New("pool closed")).Once()
	fx.hasher.EXPECT().Hash(mock.Anything, mock.AnythingOfType("string")).Return("$2a$10$decoy", nil).Once()
	fx.hasher.EXPECT().Check(ctx, "wrongpass", "$2a$10$decoy").Return(false, nil).Twice()

	_, err := fx.service.Login(ctx, &usecase.LoginInput{Email: "nobody@x.com", Password: "wrongpass"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInternalError))
	fx.hasher.AssertNotCalled(t, "Check", mock.Anything, mock.Anything, "")

	for range 2 {
		_, err = fx.service.Login(ctx, &usecase.LoginInput{Email: "nobody@x.com", Password: "wrongpass"})
		assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
	}
	fx.hasher.AssertNumberOfCalls(t, "Hash", 2)
}

func TestCredentialService_Login_DecoyIgnoresRequestCancellation(t *testing.T) {
	fx := createTestCredentialService(t)
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	fx.accountRepo.EXPECT().FindByEmail(cancelled, "nobody@x.com").Return(nil, repository.ErrAccountNotFound)
	fx.hasher.EXPECT().Hash(mock.Anything, mock.AnythingOfType("string")).
		RunAndReturn(func(ctx context.Context, _ string) (string, error) {
			if err := ctx.Err(); err != nil {
				return "", err
			}

			return "$2a$10$decoy", nil
		}).Once()
	fx.hasher.EXPECT().Check(cancelled, "wrongpass", "$2a$10$decoy").Return(false, context.Canceled)

	_, err := fx.service.Login(cancelled, &usecase.LoginInput{Email: "nobody@x.com", Password: "wrongpass"})

	assert.True(t, errors.Is(err, domainerrors.ErrInternalError))
	assert.Equal(t, "$2a$10$decoy", fx.service.(*credentialService).decoyDigest)
}

func TestCredentialService_Login_WithBcrypt(t *testing.T) {
	hasher := auth.NewBcryptHasherWithCost(bcrypt.MinCost, 1)
	digest, err := hasher.Hash(context.Background(), "secret123")
	require.NoError(t, err)

	accountRepo := mockRepo.NewMockAccountRepository(t)
	accountRepo.EXPECT().FindByEmail(mock.Anything, "ann@x.com").
		Return(&entity.Account{ID: 1, Email: "ann@x.com", PasswordHash: digest}, nil).Maybe()
	accountRepo.EXPECT().FindByEmail(mock.Anything, "nobody@x.com").
		Return(nil, repository.ErrAccountNotFound).Maybe()

	service := NewCredentialService(CredentialServiceParams{
		AccountRepo:  accountRepo,
		Hasher:       hasher,
		TokenService: mockSvc.NewMockTokenService(t),
		Logger:       newDiscardLogger(),
	})

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	t.Run("correct password on a cancelled request is not a credential failure", func(t *testing.T) {
		_, err := service.Login(cancelled, &usecase.LoginInput{Email: "ann@x.com", Password: "secret123"})

		assert.True(t, errors.Is(err, domainerrors.ErrInternalError))
		assert.False(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
	})

	t.Run("unknown email after a cancelled request still compares against a digest", func(t *testing.T) {
		_, err := service.Login(cancelled, &usecase.LoginInput{Email: "nobody@x.com", Password: "wrongpass"})
		require.Error(t, err)

		_, err = service.Login(context.Background(), &usecase.LoginInput{Email: "nobody@x.com", Password: "wrongpass"})
		assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))

		decoy := service.(*credentialService).decoyDigest
		cost, err := bcrypt.Cost([]byte(decoy))
		require.NoError(t, err)
		assert.Equal(t, bcrypt.MinCost, cost)
	})
}

func TestCredentialService_PersistenceCauseIsKept(t *testing.T) {
	fx := createTestCredentialService(t)
	ctx := context.Background()
	cause := domainerrors.NewDatabaseExecuteError(errors.New("connection reset"), "find account by email")

	fx.accountRepo.EXPECT().FindByEmail(ctx, "ann@x.com").Return(nil, cause)

	_, err := fx.service.Login(ctx, &usecase.LoginInput{Email: "ann@x.com", Password: "secret123"})

	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "ACCOUNT_PERSISTENCE_FAILED", appErr.ErrorCode())

	var dbErr *domainerrors.DatabaseExecuteError
	require.True(t, errors.As(err, &dbErr))
	assert.Equal(t, "find account by email", dbErr.Details())
}

func TestCredentialService_NilMetrics(t *testing.T) {
	accountRepo := mockRepo.NewMockAccountRepository(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	service := NewCredentialService(CredentialServiceParams{
		AccountRepo:  accountRepo,
		Hasher:       hasher,
		TokenService: mockSvc.NewMockTokenService(t),
		Logger:       newDiscardLogger(),
	})
	ctx := context.Background()

	hasher.EXPECT().ValidatePassword("secret123").Return(nil)
	accountRepo.EXPECT().FindByEmail(ctx, "ann@x.com").Return(&entity.Account{ID: 1, Email: "ann@x.com"}, nil)

	_, err := service.Signup(ctx, &usecase.SignupInput{Email: "ann@x.com", Password: "secret123"})
	assert.True(t, errors.Is(err, domainerrors.ErrDuplicateAccount))
}

func TestCredentialCountHelper(t *testing.T) {
	m := metrics.New(nil)
	m.RecordCredentialOperation(metrics.OperationLogin, metrics.OutcomeSuccess)

	assert.Equal(t, 1.0, credentialCount(m, metrics.OperationLogin, metrics.OutcomeSuccess))
	count, err := testutil.GatherAndCount(m.Registry(), "passgate_credential_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
