package transform

import "fmt"

// Feature names one sugar construct. The string values are the toggle
// names used in csconfig.json under languageFeatures.
type Feature string

const (
	FeaturePipeline Feature = "pipelineOperators"
	FeatureOverload Feature = "operatorOverloading"
	FeatureMatch    Feature = "matchExpressions"
	FeatureUpdate   Feature = "withUpdates"
	FeatureQuery    Feature = "linqQueries"
	FeatureProperty Feature = "autoProperties"
)

// AllFeatures lists every feature in dispatch priority order.
var AllFeatures = []Feature{
	FeaturePipeline,
	FeatureOverload,
	FeatureMatch,
	FeatureUpdate,
	FeatureQuery,
	FeatureProperty,
}

// ParseFeature maps a toggle name to its Feature.
func ParseFeature(name string) (Feature, error) {
	for _, f := range AllFeatures {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown feature %q", name)
}

// Features holds one toggle per sugar construct plus the choice of type
// inferrer. A disabled feature's recognizer is skipped entirely.
type Features struct {
	Pipeline bool `json:"pipelineOperators"`
	Overload bool `json:"operatorOverloading"`
	Match    bool `json:"matchExpressions"`
	Update   bool `json:"withUpdates"`
	Query    bool `json:"linqQueries"`
	Property bool `json:"autoProperties"`

	// EnhancedTypes selects the binding-aware type inferrer.
	EnhancedTypes bool `json:"enhancedTypes"`
}

// DefaultFeatures enables every lowering with the naming heuristic.
func DefaultFeatures() Features {
	return Features{
		Pipeline: true,
		Overload: true,
		Match:    true,
		Update:   true,
		Query:    true,
		Property: true,
	}
}

// Enabled reports whether f is switched on.
func (fs Features) Enabled(f Feature) bool {
	switch f {
	case FeaturePipeline:
		return fs.Pipeline
	case FeatureOverload:
		return fs.Overload
	case FeatureMatch:
		return fs.Match
	case FeatureUpdate:
		return fs.Update
	case FeatureQuery:
		return fs.Query
	case FeatureProperty:
		return fs.Property
	}
	return false
}

// With returns a copy of fs with f set to on.
func (fs Features) With(f Feature, on bool) Features {
	switch f {
	case FeaturePipeline:
		fs.Pipeline = on
	case FeatureOverload:
		fs.Overload = on
	case FeatureMatch:
		fs.Match = on
	case FeatureUpdate:
		fs.Update = on
	case FeatureQuery:
		fs.Query = on
	case FeatureProperty:
		fs.Property = on
	}
	return fs
}

// Active lists the enabled features in dispatch order.
func (fs Features) Active() []Feature {
	var out []Feature
	for _, f := range AllFeatures {
		if fs.Enabled(f) {
			out = append(out, f)
		}
	}
	return out
}

// EnhancedTypesName is the toggle name of Features.EnhancedTypes.
const EnhancedTypesName = "enhancedTypes"

// Override returns a copy of fs with the named toggles set. Names are the
// csconfig toggle names, including enhancedTypes.
func (fs Features) Override(toggles map[string]bool) (Features, error) {
	for name, on := range toggles {
		if name == EnhancedTypesName {
			fs.EnhancedTypes = on
			continue
		}
		f, err := ParseFeature(name)
		if err != nil {
			return fs, err
		}
		fs = fs.With(f, on)
	}
	return fs, nil
}
