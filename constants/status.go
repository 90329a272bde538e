package constants

// AdjustmentStatus is the outcome of reconciling one colour against the stock store.
type AdjustmentStatus string

// Stable values (these exact strings are exported to XLSX/CSV and over RPC).
const (
	AdjustmentApplied    AdjustmentStatus = "APPLIED"    // stock decremented and persisted
	AdjustmentUnresolved AdjustmentStatus = "UNRESOLVED" // colour not in stock store, nothing written
	AdjustmentFailed     AdjustmentStatus = "FAILED"     // read or write failed for this colour
)

// DocumentStatus is the per-document outcome of a batch run.
type DocumentStatus string

const (
	DocumentExtracted  DocumentStatus = "EXTRACTED"
	DocumentDuplicate  DocumentStatus = "DUPLICATE" // already reconciled in an earlier run
	DocumentFailed     DocumentStatus = "FAILED"
	DocumentReconciled DocumentStatus = "RECONCILED"
)
