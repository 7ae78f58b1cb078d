package memory

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// RevocationRepo keeps revoked jtis in process memory. Entries are evicted
// after maxTTL, which must be at least the longest token lifetime, so the set
// stays bounded by the number of tokens revoked within one token lifetime.
type RevocationRepo struct {
	revoked *expirable.LRU[string, time.Time]
	now     func() time.Time
}

func NewRevocationRepo(maxTTL time.Duration) *RevocationRepo {
	return &RevocationRepo{
		// size 0: never evict by count, a revoked token must stay revoked
		revoked: expirable.NewLRU[string, time.Time](0, nil, maxTTL),
		now:     time.Now,
	}
}

func (r *RevocationRepo) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	if !expiresAt.After(r.now()) {
		return nil
	}
	r.revoked.Add(jti, expiresAt)
	return nil
}

func (r *RevocationRepo) IsRevoked(_ context.Context, jti string) (bool, error) {
	exp, ok := r.revoked.Get(jti)
	if !ok {
		return false, nil
	}
	if !exp.After(r.now()) {
		r.revoked.Remove(jti)
		return false, nil
	}
	return true, nil
}

func (r *RevocationRepo) Len() int {
	return r.revoked.Len()
}
