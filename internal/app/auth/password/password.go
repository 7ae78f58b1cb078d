package password

import (
	"github.com/alexedwards/argon2id"
	customErrors "github.com/mohamedaliSwe/mimi-style/internal/domain/store/errors"
)

var DefaultParams = &argon2id.Params{
	Memory:      64 * 1024, // 64 MiB
	Iterations:  2,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

// Hasher hashes passwords with argon2id. The pepper is appended to every
// password and never stored.
type Hasher struct {
	pepper string
	params *argon2id.Params
}

func NewHasher(pepper string, params *argon2id.Params) *Hasher {
	if params == nil {
		params = DefaultParams
	}
	return &Hasher{pepper: pepper, params: params}
}

func (h *Hasher) Hash(plain string) (string, error) {
	hash, err := argon2id.CreateHash(plain+h.pepper, h.params)
	if err != nil {
		return "", customErrors.WrapInternal(err, "hash password")
	}
	return hash, nil
}

func (h *Hasher) Compare(plain, hash string) (bool, error) {
	ok, err := argon2id.ComparePasswordAndHash(plain+h.pepper, hash)
	if err != nil {
		return false, customErrors.WrapInternal(err, "compare password")
	}
	return ok, nil
}
