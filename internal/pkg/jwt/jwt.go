package jwt

import (
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Service verifies access tokens issued by the identity service and mints the
// short-lived stream tokens that authorize an EventSource connection, where
// the browser cannot set an Authorization header.
type Service interface {
	JWTAuth() *jwtauth.JWTAuth
	GenerateStreamToken(runID string) (token string, expiresIn int, err error)
	ValidateStreamToken(tokenString string) (runID string, err error)
}

type JWTService struct {
	secretKey string
	tokenAuth *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		secretKey: secretKey,
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

// GenerateStreamToken generates a short-lived token for one run's SSE stream
func (j *JWTService) GenerateStreamToken(runID string) (token string, expiresIn int, err error) {
	// Stream tokens are short-lived (5 minutes)
	expiresIn = 300
	expiresAt := time.Now().Add(5 * time.Minute).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"run_id": runID,
		"type":   "stream",
		"exp":    expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, expiresIn, nil
}

// ValidateStreamToken validates a stream token and returns the run ID it was
// minted for
func (j *JWTService) ValidateStreamToken(tokenString string) (runID string, err error) {
	token, err := j.tokenAuth.Decode(tokenString)
	if err != nil {
		return "", err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != "stream" {
		return "", jwt.ErrInvalidJWT()
	}

	runIDVal, ok := token.Get("run_id")
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}

	runID, ok = runIDVal.(string)
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}

	return runID, nil
}
