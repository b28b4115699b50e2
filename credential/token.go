// Package credential caches ERNIE access tokens on disk.
package credential

import (
	"errors"
	"time"
)

// MaxAge is how long, in seconds, a cached token stays usable. The provider
// does not report expiry; the age check is the only guard.
const MaxAge = 604800 // 7 days

// Token is the persisted credential record.
type Token struct {
	AccessToken string `json:"access_token"`
	Timestamp   uint64 `json:"timestamp"` // Issuance time, Unix seconds
}

// Errors returned by Store.Load.
var (
	ErrNoToken      = errors.New("no cached token")
	ErrCorruptToken = errors.New("corrupt token record")
)

// Outcome is the result of checking a cached record.
type Outcome int

const (
	// Miss means there is no usable record.
	Miss Outcome = iota
	// Hit means the cached token is fresh.
	Hit
	// Expired means the record is too old (or dated in the future).
	Expired
)

func (o Outcome) String() string {
	switch o {
	case Hit:
		return "hit"
	case Expired:
		return "expired"
	default:
		return "miss"
	}
}

// Evaluate classifies a cached record at time now. The boundary is
// inclusive: a token exactly MaxAge seconds old is still a hit.
func Evaluate(cached *Token, now time.Time) Outcome {
	if cached == nil || cached.AccessToken == "" {
		return Miss
	}

	nowSec := now.Unix()
	if nowSec < 0 || cached.Timestamp > uint64(nowSec) {
		return Expired
	}
	if uint64(nowSec)-cached.Timestamp <= MaxAge {
		return Hit
	}
	return Expired
}

// Resolution is the decision for one lookup.
type Resolution struct {
	Outcome Outcome
	Token   string // Cached token to use; set only on a hit
	Refresh bool   // A fresh token must be fetched and persisted
}

// Plan decides how to serve a token given the result of loading the cache.
// Any load error is a miss.
func Plan(cached *Token, loadErr error, now time.Time) Resolution {
	if loadErr != nil {
		return Resolution{Outcome: Miss, Refresh: true}
	}

	switch o := Evaluate(cached, now); o {
	case Hit:
		return Resolution{Outcome: Hit, Token: cached.AccessToken}
	default:
		return Resolution{Outcome: o, Refresh: true}
	}
}

// Stamp builds the record persisted for a token obtained at now.
func Stamp(accessToken string, now time.Time) Token {
	sec := now.Unix()
	if sec < 0 {
		sec = 0
	}
	return Token{AccessToken: accessToken, Timestamp: uint64(sec)}
}
