package entity

// LedgerLabel is a run-ledger entry key. Entries are matched by the full
// label, so adding labels never risks a silent overwrite of another entry.
type LedgerLabel string

const (
	LedgerRunID           LedgerLabel = "RUN ID"
	LedgerTotalRecipients LedgerLabel = "TOTAL RECIPIENTS"
	LedgerStartTime       LedgerLabel = "START TIME"
	LedgerLastRecipient   LedgerLabel = "LAST RECIPIENT"
	LedgerFailedCount     LedgerLabel = "FAILED RECIPIENTS"
	LedgerSourceUsed      LedgerLabel = "CSV USED"
	LedgerEndTime         LedgerLabel = "END TIME"
)

func (l LedgerLabel) String() string {
	return string(l)
}
