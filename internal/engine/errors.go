package engine

// Stable error codes returned in result envelopes. The calling layer keys
// its reply text off these, so they never change meaning.
const (
	// validation
	CodeMissingUsername = "MISSING_USERNAME"
	CodeMissingAlias    = "MISSING_ALIAS"
	CodeMissingQty      = "MISSING_QTY"
	CodeMissingItemRef  = "MISSING_ITEM_REF"
	CodeMissingToken    = "MISSING_TOKEN"

	// not-found
	CodeAliasNotFound = "ALIAS_NOT_FOUND"
	CodeItemNotFound  = "ITEM_NOT_FOUND"
	CodeUserNotFound  = "USER_NOT_FOUND"

	// state
	CodeNoCases         = "NO_CASES"
	CodeNoKeys          = "NO_KEYS"
	CodeItemLocked      = "ITEM_LOCKED"
	CodePendingSell     = "PENDING_SELL_EXISTS"
	CodeAmbiguousItem   = "AMBIGUOUS_ITEM"
	CodeNoPendingSell   = "NO_PENDING_SELL"
	CodeInvalidToken    = "INVALID_TOKEN"
	CodeTokenExpired    = "TOKEN_EXPIRED"
	CodeDuplicateEvent  = "DUPLICATE_EVENT"

	// persistence
	CodeLoadError = "LOAD_ERROR"
	CodeSaveError = "SAVE_ERROR"
)
