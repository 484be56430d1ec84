package errors

// Error code constants
// Format: CATEGORY_SPECIFIC_DETAIL
// Clients map these codes to their own messages

const (
	// ==================== Scope (SCOPE_) ====================
	ScopeTokenInvalid = "SCOPE_TOKEN_INVALID" // bad or tampered scope cookie
	ScopeTokenExpired = "SCOPE_TOKEN_EXPIRED" // expired scope cookie

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT" // malformed body or query
	ValidationInvalidID    = "VALIDATION_INVALID_ID"    // non-numeric or non-positive id
	ValidationInvalidRange = "VALIDATION_INVALID_RANGE" // out of range
	ValidationRequired     = "VALIDATION_REQUIRED"      // missing field

	// ==================== Resource (RESOURCE_) ====================
	ResourceNotFound = "RESOURCE_NOT_FOUND" // unknown route or record

	// ==================== Catalog (CATALOG_) ====================
	CatalogProductNotFound = "CATALOG_PRODUCT_NOT_FOUND" // no such product
	CatalogUnavailable     = "CATALOG_UNAVAILABLE"       // catalog API failed

	// ==================== Cart (CART_) ====================
	CartInvalidSize  = "CART_INVALID_SIZE"  // size outside 38-47
	CartInvalidColor = "CART_INVALID_COLOR" // color outside black/green
	CartEmpty        = "CART_EMPTY"         // buy now on an empty cart
	CartExportFailed = "CART_EXPORT_FAILED" // spreadsheet export failed

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError  = "INTERNAL_SERVER_ERROR"  // unexpected failure
	InternalStorageError = "INTERNAL_STORAGE_ERROR" // durable storage failure
	InternalExternalAPI  = "INTERNAL_EXTERNAL_API"  // upstream connection failure
	InternalConfigError  = "INTERNAL_CONFIG_ERROR"  // misconfiguration
)
