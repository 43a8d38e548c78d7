// Package middleware contains the echo middleware specific to the HTTP API.
package middleware

import (
	"log/slog"
	"strings"

	deliverycontext "passgate/internal/delivery/context"
	domainerrors "passgate/internal/domain/errors"
	"passgate/internal/domain/service"
	"passgate/internal/infra/metrics"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const bearerScheme = "bearer"

// AuthMiddlewareParams holds dependencies for AuthMiddleware, injected by Fx.
type AuthMiddlewareParams struct {
	fx.In

	TokenService service.TokenService
	Metrics      *metrics.Metrics `optional:"true"`
	Logger       *slog.Logger
}

// AuthMiddleware guards routes that require a valid session token.
type AuthMiddleware struct {
	tokenSvc service.TokenService
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(params AuthMiddlewareParams) *AuthMiddleware {
	return &AuthMiddleware{
		tokenSvc: params.TokenService,
		metrics:  params.Metrics,
		logger:   params.Logger,
	}
}

// Authenticate verifies the bearer token and exposes the identity to downstream handlers.
// Every failure is rejected with 401 before the handler runs.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			m.metrics.RecordCredentialOperation(metrics.OperationVerify, metrics.OutcomeTokenMissing)

			return domainerrors.ErrTokenMissing.WrapMessage("authentication required")
		}

		claims, err := m.tokenSvc.Verify(token)
		if err != nil {
			outcome := metrics.OutcomeTokenInvalid
			if errors.Is(err, domainerrors.ErrTokenExpired) {
				outcome = metrics.OutcomeTokenExpired
			}
			m.metrics.RecordCredentialOperation(metrics.OperationVerify, outcome)
			deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger).
				Debug("Rejected session token", slog.String("outcome", outcome), slog.Any("error", err))

			return errors.WithStack(err)
		}

		m.metrics.RecordCredentialOperation(metrics.OperationVerify, metrics.OutcomeSuccess)
		deliverycontext.SetIdentity(c, claims.Identity())

		return next(c)
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}

	return token, true
}
