package config

import (
	"strings"

	"github.com/YuminosukeSato/trackfeat/compose"
	"github.com/YuminosukeSato/trackfeat/core/model"
	"github.com/YuminosukeSato/trackfeat/frame"
	"github.com/YuminosukeSato/trackfeat/pipeline"
	"github.com/YuminosukeSato/trackfeat/pkg/errors"
	"github.com/YuminosukeSato/trackfeat/preprocessing"
)

// Build turns cfg into an unfitted Preprocessor.
func Build(cfg *Config, opts ...pipeline.Option) (*pipeline.Preprocessor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	nullOpts := []preprocessing.NullOption{
		preprocessing.WithInputValue(frame.Number(cfg.Nulls.InputValue)),
		preprocessing.WithOutputValue(frame.Parse(cfg.Nulls.OutputValue)),
	}
	if cfg.Nulls.Strict {
		nullOpts = append(nullOpts, preprocessing.WithStrictColumns())
	}
	nulls := preprocessing.NewNullConverter(cfg.Nulls.Columns, nullOpts...)

	var assignments []compose.Assignment
	if len(cfg.Assignments) == 0 {
		assignments = pipeline.TrackAssignments(pipeline.TrackLayout{
			Categorical: cfg.Layout.Categorical,
			Numeric:     cfg.Layout.Numeric,
		})
	} else {
		for _, ac := range cfg.Assignments {
			a, err := buildAssignment(ac)
			if err != nil {
				return nil, err
			}
			assignments = append(assignments, a)
		}
	}
	composer := compose.NewColumnTransformer(assignments, compose.WithRemainder(compose.Remainder(cfg.Remainder)))
	if err := composer.Validate(); err != nil {
		return nil, err
	}

	stages := []pipeline.Option{
		pipeline.WithNullConverter(nulls),
		pipeline.WithScaler(buildScaler(cfg.Scaler.Kind)),
	}
	return pipeline.NewPreprocessor(composer, append(stages, opts...)...), nil
}

func buildAssignment(ac AssignmentConfig) (compose.Assignment, error) {
	if err := checkStrategy(ac); err != nil {
		return compose.Assignment{}, err
	}
	// an empty slot is declared but produces no columns
	if len(ac.Columns) == 0 {
		return compose.Assignment{Name: ac.Name}, nil
	}
	enc, err := buildEncoder(ac)
	if err != nil {
		return compose.Assignment{}, err
	}
	if ac.Scale != "" {
		enc = pipeline.NewSteps(
			pipeline.Step{Name: "encoding", Encoder: enc},
			pipeline.Step{Name: "scaling", Encoder: buildScaler(ac.Scale)},
		)
	}
	return compose.Assignment{Name: ac.Name, Columns: ac.Columns, Encoder: enc}, nil
}

func buildEncoder(ac AssignmentConfig) (model.Encoder, error) {
	single := func() (string, error) {
		if len(ac.Columns) != 1 {
			return "", errors.NewValidationError("assignments."+ac.Name+".columns",
				ac.Encoder+" encodes exactly one column", ac.Columns)
		}
		return ac.Columns[0], nil
	}

	switch ac.Encoder {
	case "frequency", "label_frequency":
		col, err := single()
		if err != nil {
			return nil, err
		}
		opts := []preprocessing.FrequencyOption{preprocessing.WithDefault(ac.Default)}
		if ac.Strategy != "" {
			opts = append(opts, preprocessing.WithStrategy(preprocessing.Strategy(ac.Strategy)))
		}
		if ac.TrimSpace {
			opts = append(opts, preprocessing.WithTrimSpace())
		}
		if ac.Encoder == "label_frequency" {
			return preprocessing.NewLabelFrequencyEncoder(col, opts...), nil
		}
		if ac.Delimiter != "" {
			opts = append(opts, preprocessing.WithDelimiter(ac.Delimiter))
		}
		return preprocessing.NewFrequencyEncoder(col, opts...), nil
	case "circle_of_fifths":
		col, err := single()
		if err != nil {
			return nil, err
		}
		return preprocessing.NewCircleOfFifthsEncoder(col), nil
	case "aggregate":
		col, err := single()
		if err != nil {
			return nil, err
		}
		strategy := preprocessing.StrategyMax
		if ac.Strategy != "" {
			strategy = preprocessing.Strategy(ac.Strategy)
		}
		agg := preprocessing.NewNumericAggregator(col, strategy)
		if ac.Delimiter != "" {
			agg.Delimiter = ac.Delimiter
		}
		return agg, nil
	case "onehot":
		handle := preprocessing.HandleUnknownError
		if ac.HandleUnknown != "" {
			handle = ac.HandleUnknown
		}
		return preprocessing.NewOneHotEncoder(handle), nil
	case "passthrough":
		return model.Identity{}, nil
	case "standard", "minmax":
		return buildScaler(ac.Encoder), nil
	default:
		return nil, errors.NewValidationError("assignments."+ac.Name+".encoder", "unknown encoder", ac.Encoder)
	}
}

// checkStrategy rejects a strategy the encoder kind cannot reduce with.
func checkStrategy(ac AssignmentConfig) error {
	if ac.Strategy == "" {
		return nil
	}
	var allowed []string
	switch ac.Encoder {
	case "frequency", "label_frequency":
		allowed = []string{"max", "sum"}
	case "aggregate":
		allowed = []string{"max", "avg"}
	default:
		return errors.NewValidationError("assignments."+ac.Name+".strategy",
			ac.Encoder+" takes no strategy", ac.Strategy)
	}
	for _, a := range allowed {
		if ac.Strategy == a {
			return nil
		}
	}
	return errors.NewValidationError("assignments."+ac.Name+".strategy",
		ac.Encoder+" supports "+strings.Join(allowed, ", "), ac.Strategy)
}

func buildScaler(kind string) model.Encoder {
	switch kind {
	case "minmax":
		return preprocessing.NewMinMaxScalerDefault()
	case "none":
		return model.Identity{}
	default:
		return preprocessing.NewStandardScalerDefault()
	}
}
