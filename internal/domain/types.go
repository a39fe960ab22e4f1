package domain

// Principal is the authenticated user behind a request.
type Principal struct {
	UserID PositiveInteger
	Email  EmailString
}

// AuthContext carries the principal of the current request, if any.
// The zero value is anonymous.
type AuthContext struct {
	principal Option[Principal]
}

func Anonymous() AuthContext { return AuthContext{} }

func Authenticated(p Principal) AuthContext {
	return AuthContext{principal: Some(p)}
}

func (a AuthContext) Principal() (Principal, bool) { return a.principal.Get() }

// Require returns the principal or an unauthenticated error.
func (a AuthContext) Require() (Principal, error) {
	p, ok := a.principal.Get()
	if !ok {
		return Principal{}, Unauthenticated("authentication required")
	}
	return p, nil
}
