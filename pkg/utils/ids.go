package utils

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// seq disambiguates placeholder ids generated within the same nanosecond.
var seq uint64

// LocalIDPrefix marks placeholder identities. The remote service never
// issues ids with this prefix, so a placeholder can never collide with a
// server-confirmed id during merge.
const LocalIDPrefix = "local-"

// GenLocalID returns a placeholder identity for an unconfirmed message.
func GenLocalID() string {
	s := atomic.AddUint64(&seq, 1)
	return fmt.Sprintf("%s%d-%06d", LocalIDPrefix, time.Now().UTC().UnixNano(), s)
}

// IsLocalID reports whether id is a locally generated placeholder.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, LocalIDPrefix)
}
