package jwt

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	customErrors "github.com/mohamedaliSwe/mimi-style/internal/domain/store/errors"
	jwt2 "github.com/mohamedaliSwe/mimi-style/internal/domain/store/jwt"
	"github.com/mohamedaliSwe/mimi-style/internal/infra/config"
)

type JwtUtilImpl struct {
	method     jwt.SigningMethod
	signKey    any
	verifyKey  any
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	audience   string
	now        func() time.Time
}

// NewJWTUtil signs with RS256 when a key pair is configured and falls back
// to HS256 with JWTSecretKey otherwise.
func NewJWTUtil(cfg *config.Config) (*JwtUtilImpl, error) {
	j := &JwtUtilImpl{
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		now:        time.Now,
	}

	if cfg.JWTPrivateKeyPath != "" && cfg.JWTPublicKeyPath != "" {
		privPem, err := os.ReadFile(cfg.JWTPrivateKeyPath)
		if err != nil {
			return nil, customErrors.WrapInternal(err, "read private key")
		}
		privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privPem)
		if err != nil {
			return nil, customErrors.WrapInternal(err, "parse private key")
		}

		pubPem, err := os.ReadFile(cfg.JWTPublicKeyPath)
		if err != nil {
			return nil, customErrors.WrapInternal(err, "read public key")
		}
		pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPem)
		if err != nil {
			return nil, customErrors.WrapInternal(err, "parse public key")
		}

		j.method, j.signKey, j.verifyKey = jwt.SigningMethodRS256, privKey, pubKey
		return j, nil
	}

	if cfg.JWTSecretKey == "" {
		return nil, customErrors.WrapInternal(errors.New("no signing key configured"), "NewJWTUtil")
	}
	secret := []byte(cfg.JWTSecretKey)
	j.method, j.signKey, j.verifyKey = jwt.SigningMethodHS256, secret, secret
	return j, nil
}

func (j *JwtUtilImpl) GenerateAccessToken(id jwt2.Identity) (token string, exp time.Time, jti string, err error) {
	return j.generate(id, jwt2.KindAccess, j.accessTTL, id.Roles)
}

func (j *JwtUtilImpl) GenerateRefreshToken(id jwt2.Identity) (token string, exp time.Time, jti string, err error) {
	return j.generate(id, jwt2.KindRefresh, j.refreshTTL, id.Roles)
}

func (j *JwtUtilImpl) generate(id jwt2.Identity, kind string, ttl time.Duration, roles []string) (string, time.Time, string, error) {
	jti := uuid.NewString()
	now := j.now()

	claims := jwt2.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID.String(),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
		Kind:     kind,
		Username: id.Username,
		Roles:    roles,
	}
	if j.audience != "" {
		claims.Audience = jwt.ClaimStrings{j.audience}
	}

	signed, err := jwt.NewWithClaims(j.method, claims).SignedString(j.signKey)
	if err != nil {
		return "", time.Time{}, "", customErrors.WrapInternal(err, "sign "+kind+" token")
	}

	return signed, claims.ExpiresAt.Time, jti, nil
}

func (j *JwtUtilImpl) ValidateAccessToken(raw string) (jwt2.Claims, error) {
	return j.validate(raw, jwt2.KindAccess)
}

func (j *JwtUtilImpl) ValidateRefreshToken(raw string) (jwt2.Claims, error) {
	return j.validate(raw, jwt2.KindRefresh)
}

func (j *JwtUtilImpl) ParseAny(raw string) (jwt2.Claims, error) {
	return j.validate(raw, "")
}

func (j *JwtUtilImpl) validate(raw, kind string) (jwt2.Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{j.method.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}
	if j.audience != "" {
		opts = append(opts, jwt.WithAudience(j.audience))
	}

	token, err := jwt.ParseWithClaims(raw, &jwt2.Claims{}, func(t *jwt.Token) (interface{}, error) {
		return j.verifyKey, nil
	}, opts...)
	if err != nil || !token.Valid {
		return jwt2.Claims{}, customErrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt2.Claims)
	if !ok {
		return jwt2.Claims{}, customErrors.WrapInternal(errors.New("unexpected claims type"), "validate")
	}
	if claims.ID == "" || claims.Subject == "" {
		return jwt2.Claims{}, customErrors.ErrInvalidToken
	}
	if kind != "" && claims.Kind != kind {
		return jwt2.Claims{}, customErrors.ErrInvalidToken
	}

	return *claims, nil
}
