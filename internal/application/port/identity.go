package port

import (
	"context"
	"time"

	"github.com/openmuni/casework/internal/domain/entity"
)

// Identity resolves acting users from bearer tokens and issues tokens. The
// workflow never reads ambient session state; HTTP middleware resolves the
// actor through this port and passes it down explicitly.
type Identity interface {
	// Resolve validates a bearer token and returns the user it identifies.
	Resolve(ctx context.Context, token string) (*entity.User, error)

	// Issue authenticates a user by id and secret and returns a signed token.
	Issue(ctx context.Context, userID, secret string) (token string, expiresAt time.Time, err error)
}
