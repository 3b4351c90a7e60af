package auth

import "context"

type ctxKey string

const subjectKey ctxKey = "subject"

// WithSubject annotates the context with the validated token subject.
func WithSubject(ctx context.Context, username string) context.Context {
	if username == "" {
		return ctx
	}
	return context.WithValue(ctx, subjectKey, username)
}

// SubjectFromContext returns the username attached by the gate, if any.
// Anonymous requests on allow-listed paths carry no subject.
func SubjectFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	username, ok := ctx.Value(subjectKey).(string)
	return username, ok && username != ""
}
