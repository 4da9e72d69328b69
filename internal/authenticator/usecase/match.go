package usecase

import (
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/authbite/internal/authenticator/entity"
)

func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// matchTokens returns the tokens whose name best matches query. Exact matches
// win over prefix matches, which win over substring matches. Both the display
// name and the original name are compared.
func matchTokens(tokens []entity.AuthenticatorToken, query string) []entity.AuthenticatorToken {
	q := normalizeName(query)
	if q == "" {
		return nil
	}

	tiers := []func(name string) bool{
		func(name string) bool { return name == q },
		func(name string) bool { return strings.HasPrefix(name, q) },
		func(name string) bool { return strings.Contains(name, q) },
	}

	for _, match := range tiers {
		found := lo.Filter(tokens, func(t entity.AuthenticatorToken, _ int) bool {
			if match(normalizeName(t.Name)) {
				return true
			}

			return t.OriginalName != nil && match(normalizeName(*t.OriginalName))
		})
		if len(found) > 0 {
			return found
		}
	}

	return nil
}
