package agentapi

import (
	"context"
	"log"
	"net/http"

	"github.com/zeptools/print-core/responses"
	"github.com/zeptools/print-core/sec"
)

// Ctx Access Helpers

type agentIDKey struct{}

func WithAgentID(ctx context.Context, agentID string) context.Context {
	return context.WithValue(ctx, agentIDKey{}, agentID)
}

func AgentIDFromContext(ctx context.Context) (string, bool) {
	ctxVal := ctx.Value(agentIDKey{})
	val, ok := ctxVal.(string)
	return val, ok
}

// AgentAuthWrapper rejects requests without a valid agent bearer token and
// puts the verified agent id into the request context.
type AgentAuthWrapper struct {
	Secret []byte
}

func (aw *AgentAuthWrapper) Wrap(inner http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sec.ExtractBearerToken(r.Header.Get("Authorization"))
		if token == "" {
			responses.WriteSimpleErrorJSON(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		agentID, err := sec.ParseHMACSignedAgentToken(token, aw.Secret)
		if err != nil {
			log.Printf("[WARN] [AGENTAPI] rejected token: %v", err)
			responses.WriteSimpleErrorJSON(w, http.StatusUnauthorized, "invalid agent token")
			return
		}
		inner.ServeHTTP(w, r.WithContext(WithAgentID(r.Context(), agentID)))
	})
}
