package log

// Model and Operation Context
const (
	// ModelNameKey identifies the transformer type.
	// Examples: "Preprocessor", "FrequencyEncoder", "StandardScaler"
	ModelNameKey = "model.name"

	// EstimatorIDKey is a unique identifier for a specific pipeline instance.
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the operation being performed.
	OperationKey = "ml.operation"

	// ComponentKey identifies which component is logging.
	ComponentKey = "ml.component"

	// StageKey names the pipeline stage (normalize, compose, scale).
	StageKey = "ml.stage"

	// AssignmentKey names a column-transformer assignment.
	AssignmentKey = "ml.assignment"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of rows in the table.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of columns in the table.
	FeaturesKey = "data.features"

	// ColumnKey names a single column.
	ColumnKey = "data.column"

	// SourceKey names the file a table was read from.
	SourceKey = "data.source"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)

// Error Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"
)

// Standard attribute values.
const (
	OperationFit          = "fit"
	OperationTransform    = "transform"
	OperationFitTransform = "fit_transform"
	OperationLoad         = "load"
	OperationSave         = "save"

	StageNormalize = "normalize"
	StageCompose   = "compose"
	StageScale     = "scale"

	ErrorNotFitted = "NOT_FITTED"
	ErrorParse     = "PARSE_ERROR"
	ErrorEmptyData = "EMPTY_DATA"
	ErrorInvalid   = "INVALID_INPUT"
	ErrorPanic     = "PANIC"
)
