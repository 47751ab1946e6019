// Package pipeline turns a raw intake form into a canonical business
// profile. Stages run strictly in sequence: normalize, rule extraction,
// model extraction, enhancement, gap filling, validation. A failed stage
// aborts the run; there is no partial profile output.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/smegrowth/profiler-cli/internal/model"
	"github.com/smegrowth/profiler-cli/internal/vocab"
	"github.com/smegrowth/profiler-cli/pkg/textgen"
)

// Stage identifies the pipeline stage an error originated from.
type Stage string

const (
	StageNormalize Stage = "normalize"
	StageExtract   Stage = "extract_llm"
	StageEnhance   Stage = "enhance"
	StageGapFill   Stage = "gap_fill"
	StageValidate  Stage = "validate"
)

// PipelineError tags a failure with the stage that produced it.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline: stage %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// FailedStage returns the stage a pipeline error originated from, or "" when
// err is not a pipeline error.
func FailedStage(err error) Stage {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Stage
	}
	return ""
}

// Builder runs the full profile pipeline.
type Builder struct {
	normalizer *Normalizer
	extractor  *Extractor
	enhancer   *Enhancer
	gapFiller  *GapFiller
	validator  *Validator
	gateway    textgen.Client
}

// NewBuilder wires the pipeline stages over a shared vocabulary and a
// text-generation gateway.
func NewBuilder(v *vocab.Vocabulary, gateway textgen.Client, currency string) *Builder {
	return &Builder{
		normalizer: NewNormalizer(v),
		extractor:  NewExtractor(v, currency),
		enhancer:   NewEnhancer(v, currency),
		gapFiller:  NewGapFiller(v),
		validator:  NewValidator(v),
		gateway:    gateway,
	}
}

// Analyze runs only the deterministic stages: normalization plus rule
// extraction. It never calls the gateway and never fails.
func (b *Builder) Analyze(form model.FormData) model.Analysis {
	normalized := b.normalizer.Normalize(form.Description)
	return b.extractor.Extract(normalized)
}

// Build runs the full pipeline for one form submission.
func (b *Builder) Build(ctx context.Context, form model.FormData) (*model.BusinessProfile, error) {
	log := zap.L().With(zap.String("business", form.BusinessName))
	start := time.Now()

	detected := vocab.DetectLanguage(form.Description).String()

	normalized := b.normalizer.Normalize(form.Description)
	analysis := b.extractor.Extract(normalized)
	log.Debug("pipeline: rule extraction done",
		zap.String("business_type", analysis.BusinessType),
		zap.String("location", analysis.Location),
		zap.String("budget", analysis.Budget),
	)

	system, user := BuildPrompt(form, analysis)

	raw, err := b.gateway.Generate(ctx, system, user)
	if err != nil {
		log.Error("pipeline: generation failed", zap.Error(err))
		return nil, &PipelineError{Stage: StageExtract, Err: err}
	}

	parsed, err := ParseResponse(raw)
	if err != nil {
		log.Error("pipeline: response parse failed", zap.Int("response_len", len(raw)))
		return nil, &PipelineError{Stage: StageExtract, Err: err}
	}

	enhanced := b.enhancer.Enhance(parsed, analysis)
	filled := b.gapFiller.Fill(enhanced)

	profile, err := b.validator.Validate(filled, detected)
	if err != nil {
		log.Error("pipeline: validation failed", zap.Error(err))
		return nil, &PipelineError{Stage: StageValidate, Err: err}
	}

	log.Info("pipeline: profile built",
		zap.String("business_type", profile.BusinessIdentity.BusinessType),
		zap.String("language", detected),
		zap.Float64("completeness", profile.ProfileMetadata.CompletenessScore),
		zap.Duration("elapsed", time.Since(start)),
	)
	return profile, nil
}
