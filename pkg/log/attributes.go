package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator, e.g. "Sequential", "MinMaxScaler".
	ModelNameKey = "model.name"

	// OperationKey is the operation being performed: "fit", "predict", "transform", "evaluate".
	OperationKey = "ml.operation"

	// ComponentKey names the package doing the work.
	ComponentKey = "ml.component"

	// PhaseKey is the pipeline phase.
	PhaseKey = "ml.phase"

	// RunIDKey tags every record of one pipeline run.
	RunIDKey = "run.id"
)

// Data shape.
const (
	SamplesKey   = "data.samples"
	FeaturesKey  = "data.features"
	BatchSizeKey = "data.batch_size"
	PathKey      = "data.path"
)

// Training and evaluation metrics.
const (
	DurationMsKey   = "perf.duration_ms"
	LossKey         = "metrics.loss"
	ValLossKey      = "metrics.val_loss"
	MAPEKey         = "metrics.mape"
	EpochKey        = "training.epoch"
	LearningRateKey = "hyperparams.learning_rate"
	RandomSeedKey   = "config.random_seed"
)

// Prediction output.
const (
	PredsKey = "preds.count"
	WattsKey = "preds.watts"
	PaceKey  = "preds.pace"
)

// Error context.
const (
	ErrorKey      = "error"
	StacktraceKey = "error.stacktrace"
)

// Standard attribute values.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"
	OperationEvaluate  = "evaluate"
	OperationSplit     = "split"

	PhaseTraining      = "training"
	PhaseValidation    = "validation"
	PhaseInference     = "inference"
	PhasePreprocessing = "preprocessing"
)
