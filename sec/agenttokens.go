package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Agent tokens: HMAC-signed JWTs identifying one local print agent.
// The cloud side issues them out of band; every agent-facing endpoint
// requires one.

// GenerateHMACSignedAgentToken issues an HS256 token for agentID.
// expDuration <= 0 means no expiry claim.
func GenerateHMACSignedAgentToken(secret []byte, agentID string, expDuration time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"agent_id": agentID,
		"iat":      now.Unix(),
	}
	if expDuration > 0 {
		claims["exp"] = now.Add(expDuration).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseHMACSignedAgentToken verifies a signed token and returns the agent id.
func ParseHMACSignedAgentToken(signedToken string, secret []byte) (string, error) {
	parsedToken, err := jwt.Parse(signedToken, func(token *jwt.Token) (interface{}, error) {
		// ensure alg is HMAC
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	if !parsedToken.Valid {
		return "", errors.New("invalid token")
	}
	claimMap, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("failed to convert token claims to a map")
	}
	agentID, _ := claimMap["agent_id"].(string)
	if agentID == "" {
		return "", errors.New("token carries no agent_id")
	}
	return agentID, nil
}
