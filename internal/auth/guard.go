package auth

import (
	"github.com/sghss/sghss-api/internal/apperr"
	"github.com/sghss/sghss-api/internal/models"
)

// RoleSet is the set of roles allowed to perform an operation. An empty set
// permits nobody.
type RoleSet map[models.Role]struct{}

func Roles(roles ...models.Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

// AnyRole permits every authenticated staff member.
func AnyRole() RoleSet {
	return Roles(models.AllRoles...)
}

func (s RoleSet) Has(r models.Role) bool {
	_, ok := s[r]
	return ok
}

// Verifier decodes bearer tokens.
type Verifier interface {
	Verify(raw string) (*Claims, error)
}

// Guard is a stateless per-request authorization check.
type Guard struct {
	verifier Verifier
}

func NewGuard(v Verifier) *Guard {
	return &Guard{verifier: v}
}

// Authorize verifies the token and checks the decoded role against required.
func (g *Guard) Authorize(token string, required RoleSet) (*Identity, error) {
	claims, err := g.verifier.Verify(token)
	if err != nil {
		return nil, err
	}
	id := claims.Identity()
	if err := g.Permit(id, required); err != nil {
		return nil, err
	}
	return id, nil
}

// Permit checks an already verified identity.
func (g *Guard) Permit(id *Identity, required RoleSet) error {
	if id == nil {
		return apperr.ErrTokenMissing
	}
	if !required.Has(id.Role) {
		return apperr.ErrForbidden
	}
	return nil
}
