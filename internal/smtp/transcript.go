package smtp

import (
	"fmt"
	"strings"

	"github.com/wneessen/go-mail/log"
)

// transcript captures the client/server exchange the transport logs
// through its debug logger, so session errors can carry the protocol
// history that led to them. It is cleared on every successful reset
// and therefore never grows across messages.
type transcript struct {
	buf strings.Builder
}

func (t *transcript) Debugf(l log.Log) { t.record(l) }
func (t *transcript) Infof(l log.Log)  { t.record(l) }
func (t *transcript) Warnf(l log.Log)  { t.record(l) }
func (t *transcript) Errorf(l log.Log) { t.record(l) }

func (t *transcript) record(l log.Log) {
	prefix := "C: "
	if l.Direction == log.DirServerToClient {
		prefix = "S: "
	}
	fmt.Fprintf(&t.buf, prefix+l.Format+"\n", l.Messages...)
}

func (t *transcript) String() string { return t.buf.String() }

func (t *transcript) Reset() { t.buf.Reset() }
