// Package mail defines the contract for transmitting a composed campaign
// message.
//
// The dispatch loop works with the Mail interface and Message payload; the
// concrete delivery mechanism (net/smtp against a configured host) is
// implemented here as well. Transmission failures are classified into
// connection, rejection and timeout so the caller can log a useful reason,
// but every failure is still one failure class to the retry logic.
package mail
