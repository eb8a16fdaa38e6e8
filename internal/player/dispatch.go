package player

import (
	"strings"

	"github.com/jscyril/playd/internal/response"
	perr "github.com/jscyril/playd/pkg/errors"
)

// Dispatch routes a parsed request line to its Player command and builds
// the ACK response, implementing the Connection dispatch boundary's error
// taxonomy mapping (§4.8, §7). callerID is needed only by dump.
func (p *Player) Dispatch(callerID ClientId, tag, verb string, args []string) response.Response {
	cmd, ok := Commands[strings.ToLower(verb)]
	if !ok {
		return response.Ack(tag, response.AckWhat, "unknown command")
	}

	if err := cmd(p, callerID, args); err != nil {
		return response.Ack(tag, ackOutcomeFor(err), err.Error())
	}
	return response.Ack(tag, response.AckOK, strings.ToLower(verb))
}

// ackOutcomeFor maps an error's Kind to WHAT (client-side fault) or FAIL
// (server-side fault), per §7's propagation policy.
func ackOutcomeFor(err error) response.AckOutcome {
	switch perr.KindOf(err) {
	case perr.KindInvalid, perr.KindNoFile:
		return response.AckWhat
	default:
		return response.AckFail
	}
}
