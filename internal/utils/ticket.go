package utils

import (
    "crypto/rand"
    "encoding/hex"
)

// NewTicketCode generates the opaque code printed on a seat's ticket: a
// hex string twice as long as the n bytes of cryptographically secure
// random data behind it.  The code identifies the seat at the gate;
// whether it admits anyone is decided by the seat's status, never by the
// code itself.
func NewTicketCode(n int) (string, error) {
    b := make([]byte, n)
    if _, err := rand.Read(b); err != nil {
        return "", err
    }
    return hex.EncodeToString(b), nil
}
