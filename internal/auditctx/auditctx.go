package auditctx

import "context"

// Actor identifies the authenticated user behind a request together with the
// request origin, so trash events can carry attribution without the service
// layer touching HTTP types.
type Actor struct {
	UserID    string
	IPAddress string
	UserAgent string
}

// UserIDPtr returns the actor's user id as a nullable column value, nil when
// the actor is anonymous.
func (a Actor) UserIDPtr() *string {
	if a.UserID == "" {
		return nil
	}
	id := a.UserID
	return &id
}

type ctxKey struct{}

// WithActor returns a derived context carrying the actor.
func WithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey{}, actor)
}

// FromContext reports the actor attached to ctx, if any.
func FromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(ctxKey{}).(Actor)
	return actor, ok
}
