package usecase

import "time"

// SchedulingConfig holds the tunable constants of the review pipeline.
type SchedulingConfig struct {
	// BaseDelayDays is the delay before the first spaced follow-up.
	BaseDelayDays int
	// RetryDelayDays is the delay after a failed spaced follow-up.
	RetryDelayDays int
	// CurveballAfterPassDays is the delay before the curveball once the
	// spaced follow-up passed.
	CurveballAfterPassDays int
	// MasteryGateCategories is the number of distinct Bloom categories (and
	// correct answers) required before the follow-up pipeline starts.
	MasteryGateCategories int

	LessonMCQCap  int
	LessonOpenCap int
	ReviewMCQCap  int
	ReviewOpenCap int

	// StaleGenerationInterval is the age past which a generating session is
	// treated as abandoned.
	StaleGenerationInterval time.Duration
	PollAttempts            int
	PollInterval            time.Duration

	// MinReusableQuestions is the smallest test a resumable session may carry.
	MinReusableQuestions int

	// ConfigVersion stamps sessions with the generation config that built them.
	ConfigVersion int
}

// DefaultSchedulingConfig returns the stock tunables.
func DefaultSchedulingConfig() SchedulingConfig {
	return SchedulingConfig{
		BaseDelayDays:           3,
		RetryDelayDays:          2,
		CurveballAfterPassDays:  5,
		MasteryGateCategories:   8,
		LessonMCQCap:            3,
		LessonOpenCap:           1,
		ReviewMCQCap:            6,
		ReviewOpenCap:           2,
		StaleGenerationInterval: 5 * time.Minute,
		PollAttempts:            40,
		PollInterval:            time.Second,
		MinReusableQuestions:    8,
		ConfigVersion:           1,
	}
}

func (c SchedulingConfig) normalized() SchedulingConfig {
	def := DefaultSchedulingConfig()
	if c.BaseDelayDays <= 0 {
		c.BaseDelayDays = def.BaseDelayDays
	}
	if c.RetryDelayDays <= 0 {
		c.RetryDelayDays = def.RetryDelayDays
	}
	if c.CurveballAfterPassDays <= 0 {
		c.CurveballAfterPassDays = def.CurveballAfterPassDays
	}
	if c.MasteryGateCategories <= 0 {
		c.MasteryGateCategories = def.MasteryGateCategories
	}
	if c.LessonMCQCap <= 0 {
		c.LessonMCQCap = def.LessonMCQCap
	}
	if c.LessonOpenCap <= 0 {
		c.LessonOpenCap = def.LessonOpenCap
	}
	if c.ReviewMCQCap <= 0 {
		c.ReviewMCQCap = def.ReviewMCQCap
	}
	if c.ReviewOpenCap <= 0 {
		c.ReviewOpenCap = def.ReviewOpenCap
	}
	if c.StaleGenerationInterval <= 0 {
		c.StaleGenerationInterval = def.StaleGenerationInterval
	}
	if c.PollAttempts <= 0 {
		c.PollAttempts = def.PollAttempts
	}
	if c.PollInterval <= 0 {
		c.PollInterval = def.PollInterval
	}
	if c.MinReusableQuestions <= 0 {
		c.MinReusableQuestions = def.MinReusableQuestions
	}
	if c.ConfigVersion <= 0 {
		c.ConfigVersion = def.ConfigVersion
	}
	return c
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}
