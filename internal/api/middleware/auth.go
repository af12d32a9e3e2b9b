// auth.go — JWT middleware аутентификации и guard'ы авторизации Jobly.
// Двухэтапная схема: Middleware() только декодирует токен и кладёт Identity
// в контекст (ошибки проверки молча игнорируются), а EnsureXxx guard'ы
// отклоняют запрос, если Identity нет или прав недостаточно.
// Основная проверка подписи — HS256 с секретом из конфигурации;
// опционально — RS256 через JWKS внешнего IdP.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	apierrors "github.com/bigkaa/jobly/internal/api/errors"
)

// contextKey — тип для ключей контекста (избегаем коллизий).
type contextKey string

const (
	// ContextKeyIdentity — Identity аутентифицированного пользователя в контексте запроса.
	ContextKeyIdentity contextKey = "jobly_identity"
)

// Identity — декодированные claims токена.
// Присутствует в контексте тогда и только тогда, когда предъявлен валидный токен.
type Identity struct {
	// Username — уникальный handle пользователя.
	Username string
	// IsAdmin — true только если claim isAdmin был булевым true.
	IsAdmin bool
	// IssuedAt — время выпуска токена (iat), нулевое если claim отсутствует.
	IssuedAt time.Time
}

// joblyClaims — raw claims токена Jobly.
type joblyClaims struct {
	jwt.RegisteredClaims
	// Username — имя пользователя.
	Username string `json:"username"`
	// IsAdmin — флаг администратора. Тип any: строгая проверка на bool
	// выполняется в identity(), любое другое значение — не администратор.
	IsAdmin any `json:"isAdmin,omitempty"`
}

// identity формирует Identity из raw claims.
func (c *joblyClaims) identity() *Identity {
	isAdmin, ok := c.IsAdmin.(bool)
	id := &Identity{
		Username: c.Username,
		IsAdmin:  ok && isAdmin,
	}
	if c.IssuedAt != nil {
		id.IssuedAt = c.IssuedAt.Time
	}
	return id
}

// JWTAuth — декодирование токенов Jobly.
type JWTAuth struct {
	secret []byte
	jwks   keyfunc.Keyfunc
	logger *slog.Logger
}

// NewJWTAuth создаёт JWT middleware, проверяющий HS256-токены секретом secret.
func NewJWTAuth(secret string, logger *slog.Logger) *JWTAuth {
	return &JWTAuth{
		secret: []byte(secret),
		logger: logger.With(slog.String("component", "jwt_auth")),
	}
}

// NewJWTAuthWithJWKS создаёт JWT middleware, который дополнительно
// принимает RS256-токены, подписанные ключами из JWKS endpoint.
// jwksClientTimeout — таймаут HTTP-клиента JWKS.
// jwksRefreshInterval — интервал обновления ключей.
func NewJWTAuthWithJWKS(
	secret string,
	jwksURL string,
	jwksClientTimeout time.Duration,
	jwksRefreshInterval time.Duration,
	logger *slog.Logger,
) (*JWTAuth, error) {
	// JWKS Storage с фоновым обновлением.
	// NoErrorReturnFirstHTTPReq — стартуем даже если IdP ещё недоступен.
	storage, err := jwkset.NewStorageFromHTTP(jwksURL, jwkset.HTTPClientStorageOptions{
		Client:                    &http.Client{Timeout: jwksClientTimeout},
		NoErrorReturnFirstHTTPReq: true,
		RefreshInterval:           jwksRefreshInterval,
		RefreshErrorHandler: func(_ context.Context, err error) {
			logger.Error("Ошибка обновления JWKS",
				slog.String("error", err.Error()),
				slog.String("url", jwksURL),
			)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("создание JWKS storage: %w", err)
	}

	k, err := keyfunc.New(keyfunc.Options{
		Storage: storage,
	})
	if err != nil {
		return nil, fmt.Errorf("создание keyfunc: %w", err)
	}

	return NewJWTAuthWithKeyfunc(secret, k, logger), nil
}

// NewJWTAuthWithKeyfunc создаёт JWT middleware с предоставленной keyfunc для RS256.
// Используется в тестах для подстановки mock JWKS.
func NewJWTAuthWithKeyfunc(secret string, kf keyfunc.Keyfunc, logger *slog.Logger) *JWTAuth {
	j := NewJWTAuth(secret, logger)
	j.jwks = kf
	return j
}

// Authenticate проверяет подпись токена и возвращает Identity.
// Никогда не возвращает ошибку: любой сбой проверки (чужая подпись,
// битый токен, пустая строка) даёт (nil, false) — анонимный запрос.
func (j *JWTAuth) Authenticate(ctx context.Context, tokenString string) (*Identity, bool) {
	if tokenString == "" {
		return nil, false
	}

	methods := []string{jwt.SigningMethodHS256.Alg()}
	if j.jwks != nil {
		methods = append(methods, jwt.SigningMethodRS256.Alg())
	}

	claims := &joblyClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, j.keyfunc(ctx), jwt.WithValidMethods(methods))
	if err != nil || !token.Valid {
		j.logger.Debug("JWT валидация не пройдена, запрос анонимный",
			slog.Any("error", err),
		)
		return nil, false
	}

	if claims.Username == "" {
		j.logger.Debug("В токене отсутствует username")
		return nil, false
	}

	return claims.identity(), true
}

// keyfunc выбирает ключ проверки по алгоритму токена.
func (j *JWTAuth) keyfunc(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodHMAC:
			return j.secret, nil
		case *jwt.SigningMethodRSA:
			if j.jwks != nil {
				return j.jwks.KeyfuncCtx(ctx)(token)
			}
		}
		return nil, fmt.Errorf("неподдерживаемый алгоритм подписи: %v", token.Header["alg"])
	}
}

// Middleware возвращает HTTP middleware аутентификации.
// Извлекает Bearer token, при успешной проверке помещает Identity в контекст.
// Запрос всегда передаётся дальше — отказ выполняют guard'ы.
func (j *JWTAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if identity, ok := j.Authenticate(r.Context(), bearerToken(r)); ok {
				r = r.WithContext(WithIdentity(r.Context(), identity))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken извлекает токен из заголовка "Authorization: Bearer <token>".
// Возвращает пустую строку при отсутствии или неверном формате заголовка.
func bearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// --- Предикаты авторизации ---

// IsLoggedIn — Identity присутствует.
func IsLoggedIn(id *Identity) bool {
	return id != nil
}

// IsAdmin — Identity присутствует и флаг администратора установлен.
func IsAdmin(id *Identity) bool {
	return id != nil && id.IsAdmin
}

// IsThisUserOrAdmin — Identity принадлежит пользователю handle или администратору.
func IsThisUserOrAdmin(id *Identity, handle string) bool {
	if id == nil {
		return false
	}
	return id.IsAdmin || id.Username == handle
}

// --- Guard middleware ---
// Должны использоваться ПОСЛЕ JWTAuth.Middleware().

// EnsureLoggedIn пропускает только аутентифицированные запросы.
func EnsureLoggedIn() func(http.Handler) http.Handler {
	return guard(func(r *http.Request) bool {
		return IsLoggedIn(IdentityFromContext(r.Context()))
	}, "Требуется аутентификация")
}

// EnsureIsAdmin пропускает только администраторов.
func EnsureIsAdmin() func(http.Handler) http.Handler {
	return guard(func(r *http.Request) bool {
		return IsAdmin(IdentityFromContext(r.Context()))
	}, "Требуются права администратора")
}

// EnsureThisUserOrAdmin пропускает владельца ресурса или администратора.
// param — имя chi URL-параметра с handle пользователя (например, "username").
func EnsureThisUserOrAdmin(param string) func(http.Handler) http.Handler {
	return guard(func(r *http.Request) bool {
		return IsThisUserOrAdmin(IdentityFromContext(r.Context()), chi.URLParam(r, param))
	}, "Доступ разрешён только владельцу или администратору")
}

// guard — общий каркас guard middleware: 401 при невыполненном предикате.
func guard(allow func(r *http.Request) bool, message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allow(r) {
				apierrors.Unauthorized(w, message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// --- Context helpers ---

// WithIdentity возвращает контекст с Identity.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ContextKeyIdentity, id)
}

// IdentityFromContext извлекает Identity из контекста запроса.
// Возвращает nil, если запрос анонимный.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(ContextKeyIdentity).(*Identity)
	return id
}

// UsernameFromContext извлекает username из контекста запроса.
// Возвращает пустую строку, если запрос анонимный.
func UsernameFromContext(ctx context.Context) string {
	id := IdentityFromContext(ctx)
	if id == nil {
		return ""
	}
	return id.Username
}
