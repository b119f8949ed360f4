package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/authtokens/internal/common"
	"github.com/dmitrijs2005/authtokens/internal/logging"
	"github.com/dmitrijs2005/authtokens/internal/server/auth"
)

// Decision is the outcome of admitting a single request.
type Decision int

const (
	PassThrough Decision = iota
	Allow
	RejectMalformed
	RejectExpired
	RejectRevoked
	RejectNoSession
)

func (d Decision) String() string {
	switch d {
	case PassThrough:
		return "PASS_THROUGH"
	case Allow:
		return "ALLOW"
	case RejectMalformed:
		return "REJECT_MALFORMED"
	case RejectExpired:
		return "REJECT_EXPIRED"
	case RejectRevoked:
		return "REJECT_REVOKED"
	case RejectNoSession:
		return "REJECT_NO_SESSION"
	default:
		return "UNKNOWN"
	}
}

// Rejected reports whether the request must be refused.
func (d Decision) Rejected() bool {
	return d != PassThrough && d != Allow
}

// Err maps a rejection to its sentinel error, nil for admitted requests.
func (d Decision) Err() error {
	switch d {
	case PassThrough, Allow:
		return nil
	case RejectMalformed:
		return common.ErrMalformedToken
	case RejectExpired:
		return common.ErrTokenExpired
	case RejectRevoked:
		return common.ErrTokenRevoked
	default:
		return common.ErrorUnauthorized
	}
}

// Result carries the decision and, once the token decoded, its claims.
type Result struct {
	Decision  Decision
	Subject   string
	ExpiresAt time.Time
}

// Admission decides whether a bearer access token may be used. Each call is
// independent; the only side effect is revoking tokens whose session is gone.
type Admission struct {
	clock
	codec       *auth.Codec
	revocations *RevocationService
	sessions    *RefreshTokenService
	log         logging.Logger
}

func NewAdmission(
	codec *auth.Codec,
	revocations *RevocationService,
	sessions *RefreshTokenService,
	log logging.Logger,
	opts ...Option,
) *Admission {
	return &Admission{
		clock:       newClock(opts),
		codec:       codec,
		revocations: revocations,
		sessions:    sessions,
		log:         log.With("module", "admission"),
	}
}

// Decide evaluates token. An empty token passes through unauthenticated.
// Checks run cheapest first and stop at the first rejection. A non-nil
// error means a store could not be consulted and the request must fail.
func (a *Admission) Decide(ctx context.Context, token string) (Result, error) {
	if token == "" {
		return Result{Decision: PassThrough}, nil
	}

	claims, err := a.codec.Decode(token)
	if err != nil {
		if errors.Is(err, common.ErrMalformedToken) {
			return Result{Decision: RejectMalformed}, nil
		}
		return Result{}, err
	}
	res := Result{Subject: claims.Subject, ExpiresAt: claims.ExpiresAt}

	if !claims.ExpiresAt.After(a.now()) {
		res.Decision = RejectExpired
		return res, nil
	}

	revoked, err := a.revocations.IsRevoked(ctx, token)
	if err != nil {
		return Result{}, err
	}
	if revoked {
		res.Decision = RejectRevoked
		return res, nil
	}

	live, err := a.sessions.HasActiveSession(ctx, claims.Subject)
	if err != nil {
		return Result{}, err
	}
	if !live {
		if err := a.revocations.Revoke(ctx, token, claims.ExpiresAt); err != nil {
			return Result{}, err
		}
		a.log.Info(ctx, "revoked access token without a live session", "subject", claims.Subject)
		res.Decision = RejectNoSession
		return res, nil
	}

	res.Decision = Allow
	return res, nil
}
