// Package trackfeat turns raw music-track tables into purely numeric feature
// tables for a downstream regression model.
//
// trackfeat offers a scikit-learn-like fit/transform API: encoders are fitted
// once on training data and then applied to training, validation and future
// tables with the same fitted state.
//
// # Features
//
// - Frequency encoding of single- and multi-valued categorical columns
// - Circle-of-fifths encoding of musical keys into two Cartesian columns
// - Max/avg aggregation of comma-separated numeric lists
// - Sentinel-to-missing normalization
// - Column-wise composition with a drop or passthrough remainder
// - Global standard or min-max scaling
// - Persistence of fitted state
//
// # Installation
//
//	go get github.com/YuminosukeSato/trackfeat
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/trackfeat/dataset"
//	    "github.com/YuminosukeSato/trackfeat/pipeline"
//	)
//
//	func main() {
//	    train, err := dataset.Read("train.csv")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    p := pipeline.DefaultTrackPreprocessor(pipeline.DefaultTrackLayout())
//	    features, err := p.FitTransform(train)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    fmt.Println("Features:", features.Names())
//	}
//
// # Packages
//
// The library is organized into several packages:
//
//   - frame: Typed cells, columns and immutable tables
//   - core/model: Encoder interface, fitted-state persistence
//   - preprocessing: Encoders and scalers
//   - compose: ColumnTransformer routing columns to encoders
//   - pipeline: Two-phase Preprocessor and the canonical track layout
//   - config: koanf-based configuration and the Preprocessor builder
//   - dataset: CSV and XLSX readers, CSV writer
//   - report: Column summaries and histograms
//   - pkg/errors, pkg/log: Error taxonomy and structured logging
//
// # Concurrency
//
// A fitted Preprocessor may be shared by concurrent Transform calls. Fit and
// Load must not overlap with any other call on the same instance.
//
// # License
//
// trackfeat is released under the MIT License.
package trackfeat
