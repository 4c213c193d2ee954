package logging

// Standardized field names for structured logging.
const (
	FieldFile        = "file_path"
	FieldLine        = "line"
	FieldComponent   = "component"
	FieldUserID      = "user_id"
	FieldAccountID   = "account_id"
	FieldBatchID     = "batch_id"
	FieldCategory    = "category"
	FieldCategoryID  = "category_id"
	FieldConfidence  = "confidence"
	FieldDescription = "description"
	FieldAmount      = "amount"
	FieldBalance     = "balance"
	FieldReason      = "reason"
	FieldOperation   = "operation"
	FieldStatus      = "status"
	FieldCount       = "count"
	FieldDriver      = "driver"
	FieldDuration    = "duration_ms"
)
