// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	deliverycontext "passgate/internal/delivery/context"
	"passgate/internal/domain/entity"
	domainerrors "passgate/internal/domain/errors"
	"passgate/internal/domain/repository"
	"passgate/internal/domain/service"
	"passgate/internal/infra/metrics"
	"passgate/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const tokenTypeBearer = "Bearer"

// credentialService implements the CredentialUsecase interface.
type credentialService struct {
	accountRepo  repository.AccountRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	metrics      *metrics.Metrics
	logger       *slog.Logger

	// decoyDigest is compared against when the email is unknown so that both
	// failed-login paths spend the same hashing time. It stays empty until a
	// hash succeeds.
	decoyMu     sync.Mutex
	decoyDigest string
}

// CredentialServiceParams holds dependencies for CredentialService, injected by Fx.
type CredentialServiceParams struct {
	fx.In

	AccountRepo  repository.AccountRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Metrics      *metrics.Metrics `optional:"true"`
	Logger       *slog.Logger
}

// NewCredentialService is the constructor for credentialService. It receives all dependencies as interfaces.
func NewCredentialService(params CredentialServiceParams) usecase.CredentialUsecase {
	return &credentialService{
		accountRepo:  params.AccountRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		metrics:      params.Metrics,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *credentialService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Signup registers a new account and returns it without the password digest.
func (srv *credentialService) Signup(ctx context.Context, input *usecase.SignupInput) (*usecase.SignupOutput, error) {
	if input == nil {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("signup input is required")
	}

	email := normalizeEmail(input.Email)
	if email == "" {
		srv.record(metrics.OperationSignup, metrics.OutcomeInvalidInput)

		return nil, domainerrors.ErrValidationFailed.WithDetails("email is required")
	}
	if err := srv.hasher.ValidatePassword(input.Password); err != nil {
		srv.record(metrics.OperationSignup, metrics.OutcomeInvalidInput)

		return nil, errors.WithStack(err)
	}

	srv.log(ctx).Info("Starting signup", slog.String("email", email))

	// Fast path only; the unique index settles concurrent signups in Create.
	_, err := srv.accountRepo.FindByEmail(ctx, email)
	if err == nil {
		srv.record(metrics.OperationSignup, metrics.OutcomeDuplicate)

		return nil, domainerrors.ErrDuplicateAccount.WrapMessage("signup failed")
	}
	if !errors.Is(err, repository.ErrAccountNotFound) {
		srv.log(ctx).Error("Failed to look up account during signup", slog.Any("error", err))
		srv.record(metrics.OperationSignup, metrics.OutcomeError)

		return nil, errors.WithStack(domainerrors.ErrAccountPersistence.WithCause(err))
	}

	start := time.Now()
	digest, err := srv.hasher.Hash(ctx, input.Password)
	srv.metrics.ObservePasswordHash(metrics.OperationSignup, time.Since(start))
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during signup", slog.Any("error", err))
		srv.record(metrics.OperationSignup, metrics.OutcomeError)

		return nil, errors.WithStack(domainerrors.ErrInternalError.WithCause(err))
	}

	account := &entity.Account{
		Name:         normalizeName(input.Name),
		Email:        email,
		PasswordHash: digest,
	}
	if err := srv.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrAccountConflict) {
			srv.log(ctx).Warn("Concurrent signup lost the race on email", slog.String("email", email))
			srv.record(metrics.OperationSignup, metrics.OutcomeDuplicate)

			return nil, domainerrors.ErrDuplicateAccount.WrapMessage("signup failed")
		}
		srv.log(ctx).Error("Failed to create account", slog.Any("error", err))
		srv.record(metrics.OperationSignup, metrics.OutcomeError)

		return nil, errors.WithStack(domainerrors.ErrAccountPersistence.WithCause(err))
	}

	srv.log(ctx).Info("Account created", slog.Int64("account_id", account.ID))
	srv.record(metrics.OperationSignup, metrics.OutcomeSuccess)

	return &usecase.SignupOutput{
		ID:    account.ID,
		Name:  account.Name,
		Email: account.Email,
	}, nil
}

// Login verifies the credentials and issues a session token.
// An unknown email and a wrong password produce the same error.
func (srv *credentialService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	if input == nil {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("login input is required")
	}

	email := normalizeEmail(input.Email)
	srv.log(ctx).Debug("Starting login", slog.String("email", email))

	account, err := srv.accountRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrAccountNotFound) {
		srv.log(ctx).Error("Failed to look up account during login", slog.Any("error", err))
		srv.record(metrics.OperationLogin, metrics.OutcomeError)

		return nil, errors.WithStack(domainerrors.ErrAccountPersistence.WithCause(err))
	}

	var digest string
	reason := "password mismatch"
	if account != nil {
		digest = account.PasswordHash
	} else {
		digest, err = srv.decoy(ctx)
		if err != nil {
			srv.log(ctx).Error("Failed to prepare decoy digest", slog.Any("error", err))
			srv.record(metrics.OperationLogin, metrics.OutcomeError)

			return nil, errors.WithStack(domainerrors.ErrInternalError.WithCause(err))
		}
		reason = "account not found"
	}

	start := time.Now()
	matched, err := srv.hasher.Check(ctx, input.Password, digest)
	srv.metrics.ObservePasswordHash(metrics.OperationLogin, time.Since(start))
	if err != nil {
		srv.log(ctx).Error("Failed to compare password during login", slog.Any("error", err))
		srv.record(metrics.OperationLogin, metrics.OutcomeError)

		return nil, errors.WithStack(domainerrors.ErrInternalError.WithCause(err))
	}
	if !matched || account == nil {
		srv.log(ctx).Warn("Login rejected", slog.String("email", email), slog.String("reason", reason))
		srv.record(metrics.OperationLogin, metrics.OutcomeInvalidCredential)

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
	}

	ttl := srv.tokenService.DefaultTTL()
	token, _, err := srv.tokenService.Issue(account.Identity(), ttl)
	if err != nil {
		srv.log(ctx).Error("Failed to issue token", slog.Any("error", err))
		srv.record(metrics.OperationLogin, metrics.OutcomeError)

		return nil, errors.WithStack(domainerrors.ErrInternalError.WithCause(err))
	}

	srv.log(ctx).Info("Login succeeded", slog.Int64("account_id", account.ID))
	srv.record(metrics.OperationLogin, metrics.OutcomeSuccess)

	return &usecase.LoginOutput{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   int64(ttl / time.Second),
	}, nil
}

// decoy returns the digest of a random value, which is never a valid password.
// It is hashed on first use, detached from ctx, and retried until a hash succeeds.
func (srv *credentialService) decoy(ctx context.Context) (string, error) {
	srv.decoyMu.Lock()
	defer srv.decoyMu.Unlock()

	if srv.decoyDigest != "" {
		return srv.decoyDigest, nil
	}

	digest, err := srv.hasher.Hash(context.WithoutCancel(ctx), uuid.NewString())
	if err != nil {
		return "", errors.Wrap(err, "failed to hash decoy")
	}
	srv.decoyDigest = digest

	return digest, nil
}

func (srv *credentialService) record(operation, outcome string) {
	srv.metrics.RecordCredentialOperation(operation, outcome)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeName(name *string) *string {
	if name == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil
	}

	return &trimmed
}
