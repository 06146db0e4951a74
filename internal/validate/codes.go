package validate

// Source identifies this server in published diagnostics.
const Source = "New Horizons"

// Stable error codes carried on diagnostics.
const (
	CodeShipLogDuplicateID      = "nh.shiplog.duplicate_ids"
	CodeShipLogReservedID       = "nh.shiplog.reserved_id"
	CodeShipLogMissingCuriosity = "nh.shiplog.missing_curiosity"
	CodeShipLogInvalidSourceID  = "nh.shiplog.invalid_source_id"
	CodeConfigFilePathNotFound  = "nh.config.file_path_not_found"
)
