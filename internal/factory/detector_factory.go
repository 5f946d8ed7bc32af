package factory

import (
	"github.com/mailsift/mailsift/internal/config"
	"github.com/mailsift/mailsift/internal/core"
	"github.com/mailsift/mailsift/internal/detect"
	"github.com/mailsift/mailsift/internal/exclude"
	"go.uber.org/zap"
)

// DetectorFactory creates the pattern detector set
type DetectorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewDetectorFactory creates a new detector factory
func NewDetectorFactory(cfg *config.Config, logger *zap.Logger) *DetectorFactory {
	return &DetectorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateDetectors creates all six detector families in a fixed order
func (f *DetectorFactory) CreateDetectors() []core.PatternDetector {
	analysisCfg := f.cfg.GetAnalysis()
	minSize := analysisCfg.MinPatternSize
	excluded := exclude.NewChecker(analysisCfg.ExcludedLabels, f.logger)

	return []core.PatternDetector{
		detect.NewSenderDetector(minSize, f.logger),
		detect.NewSubjectDetector(minSize, f.logger),
		detect.NewTemporalDetector(minSize, f.logger),
		detect.NewLabelDetector(minSize, excluded, f.logger),
		detect.NewAttachmentDetector(minSize, f.logger),
		detect.NewClusterDetector(minSize, f.logger),
	}
}
