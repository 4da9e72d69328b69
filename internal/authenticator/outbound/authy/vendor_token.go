package authy

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/shandysiswandi/authbite/internal/authenticator/entity"
)

// ListAuthenticatorTokens fetches every token of the account.
func (c *Client) ListAuthenticatorTokens(ctx context.Context, authyID, deviceID uint64, dc entity.DeviceCodes, apps []string) (_ []entity.AuthenticatorToken, err error) {
	ctx, span := c.startSpan(ctx, "ListAuthenticatorTokens")
	defer func() { endSpan(span, err) }()

	q := c.authQuery(deviceID, dc)
	q.Set("apps", strings.Join(apps, ","))
	q.Set("locale", c.locale)

	var resp authenticatorTokensResponse
	if err := c.do(ctx, call{
		endpoint: "authenticator_tokens",
		method:   http.MethodGet,
		path:     "/users/" + strconv.FormatUint(authyID, 10) + "/authenticator_tokens",
		query:    q,
	}, &resp); err != nil {
		return nil, err
	}

	if resp.AuthenticatorTokens == nil {
		return []entity.AuthenticatorToken{}, nil
	}

	return resp.AuthenticatorTokens, nil
}
