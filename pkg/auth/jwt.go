package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// clockSkew is tolerated on exp, nbf and iat between issuer and validator.
const clockSkew = 30 * time.Second

// JWTConfig selects the key material. PrivateKeyPEM wins over PublicKeyPEM,
// which wins over Secret:
//   - PrivateKeyPEM: RS256, signs and validates.
//   - PublicKeyPEM: RS256, validates only.
//   - Secret: HS256, signs and validates.
type JWTConfig struct {
	Secret        string
	PrivateKeyPEM string
	PublicKeyPEM  string

	// Issuer is stamped on minted tokens and, when set, required on
	// validated ones.
	Issuer     string
	Expiration time.Duration
}

// JWTService mints and verifies the bearer tokens that identify actors.
type JWTService struct {
	cfg       JWTConfig
	method    jwt.SigningMethod
	signKey   any // nil in validation-only mode
	verifyKey any
	parser    *jwt.Parser
}

// NewJWTService resolves the key material in cfg.
func NewJWTService(cfg JWTConfig) (*JWTService, error) {
	s := &JWTService{cfg: cfg}

	switch {
	case cfg.PrivateKeyPEM != "":
		key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(cfg.PrivateKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parse RSA private key: %w", err)
		}
		s.method, s.signKey, s.verifyKey = jwt.SigningMethodRS256, key, &key.PublicKey
	case cfg.PublicKeyPEM != "":
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parse RSA public key: %w", err)
		}
		s.method, s.verifyKey = jwt.SigningMethodRS256, key
	case cfg.Secret != "":
		s.method, s.signKey, s.verifyKey = jwt.SigningMethodHS256, []byte(cfg.Secret), []byte(cfg.Secret)
	default:
		return nil, errors.New("jwt: one of PrivateKeyPEM, PublicKeyPEM or Secret is required")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(clockSkew),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	s.parser = jwt.NewParser(opts...)
	return s, nil
}

// GenerateToken mints a token for actorID. Role tags are lower-cased and
// de-duplicated so they compare equal to the Role constants.
func (s *JWTService) GenerateToken(actorID string, roles []string) (string, error) {
	if s.signKey == nil {
		return "", errors.New("jwt: validation-only service cannot mint tokens")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.cfg.Issuer,
			Subject:   actorID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.Expiration)),
		},
		ActorID: actorID,
		Roles:   normalizeRoles(roles),
	}
	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.signKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies signature, algorithm, lifetime and issuer. Tokens
// minted elsewhere may leave actor_id out; the subject stands in for it.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.verifyKey, nil
	}); err != nil {
		return nil, fmt.Errorf("validate token: %w", err)
	}
	if claims.ActorID == "" {
		claims.ActorID = claims.Subject
	}
	claims.Roles = normalizeRoles(claims.Roles)
	return claims, nil
}

func normalizeRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.ToLower(strings.TrimSpace(r))
		if r != "" && !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}

// GenerateKeyPair returns a PEM-encoded 2048-bit RSA pair for RS256
// deployments: a PKCS#1 private key and a PKIX public key.
func GenerateKeyPair() (privateKeyPEM, publicKeyPEM []byte, err error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, fmt.Errorf("generate RSA key: %w", err)
	}
	pub, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal public key: %w", err)
	}
	privateKeyPEM = pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	publicKeyPEM = pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pub})
	return privateKeyPEM, publicKeyPEM, nil
}
