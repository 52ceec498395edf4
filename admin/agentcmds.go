package admin

import (
	"fmt"
	"io"
	"time"

	"github.com/zeptools/print-core/sec"
	"github.com/zeptools/print-core/uds"
)

// NewAgentCommandMap builds the operator commands for agent credentials.
// ttl of 0 mints tokens without expiry.
func NewAgentCommandMap(secret []byte, ttl time.Duration) map[string]uds.CmdHnd {
	return map[string]uds.CmdHnd{
		"agents.token": {
			Desc:  "mint a signed token for a local agent",
			Usage: "agents.token <agent-id>",
			Fn: func(args []string, w io.Writer) error {
				if len(args) != 1 || args[0] == "" {
					_, _ = fmt.Fprintln(w, "usage: agents.token <agent-id>")
					return nil
				}
				token, err := sec.GenerateHMACSignedAgentToken(secret, args[0], ttl)
				if err != nil {
					_, _ = fmt.Fprintf(w, "error: %v\n", err)
					return err
				}
				_, _ = fmt.Fprintln(w, token)
				return nil
			},
		},
	}
}

// MergeCommandMaps combines command sets for a single admin socket.
// Later maps win on key collision.
func MergeCommandMaps(maps ...map[string]uds.CmdHnd) map[string]uds.CmdHnd {
	merged := make(map[string]uds.CmdHnd)
	for _, m := range maps {
		for k, v := range m {
			merged[k] = v
		}
	}
	return merged
}
