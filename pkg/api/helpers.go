package api

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	jwtgo "github.com/golang-jwt/jwt/v4"
)

var (
	// ErrInvalidSigningAlgorithm indicates signing algorithm is invalid, needs to be HS256
	ErrInvalidSigningAlgorithm = errors.New("invalid signing algorithm")
)

// NormalizeBaseURL trims whitespace and a single trailing slash
func NormalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	return strings.TrimSuffix(baseURL, "/")
}

var commitHashRegex = regexp.MustCompile(`^[0-9a-fA-F]{4,64}$`)

// IsValidCommitHash is true for an abbreviated or full sha-1 or sha-256 git object id
func IsValidCommitHash(commitHash string) bool {
	return commitHashRegex.MatchString(commitHash)
}

// GetBuildStatusURL returns the bitbucket server build-status endpoint for a commit; the hash is escaped as a single path segment
func GetBuildStatusURL(baseURL, commitHash string) string {
	return fmt.Sprintf("%v/rest/build-status/1.0/commits/%v", NormalizeBaseURL(baseURL), url.PathEscape(commitHash))
}

// GetHostname returns the hostname of a url, used to scope credential lookups
func GetHostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	return strings.ToLower(u.Hostname())
}

func GenerateJWT(key string, now time.Time, expiry time.Time, optionalClaims jwtgo.MapClaims) (tokenString string, err error) {

	// Create the token
	token := jwtgo.New(jwtgo.SigningMethodHS256)
	claims := token.Claims.(jwtgo.MapClaims)

	// set required claims
	claims["exp"] = expiry.Unix()
	claims["orig_iat"] = now.Unix()

	for key, value := range optionalClaims {
		claims[key] = value
	}

	// sign the token
	return token.SignedString([]byte(key))
}

func ValidateJWT(key, tokenString string) (token *jwtgo.Token, err error) {
	return jwtgo.Parse(tokenString, func(t *jwtgo.Token) (interface{}, error) {
		if jwtgo.SigningMethodHS256 != t.Method {
			return nil, ErrInvalidSigningAlgorithm
		}
		return []byte(key), nil
	})
}
